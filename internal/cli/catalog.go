package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/present"
	"github.com/mithrel/arttown/internal/util"
	"github.com/mithrel/arttown/internal/wire"
)

func optionValues(opts []content.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func validOption(opts []content.Option, v string) bool {
	if v == "" {
		return true
	}
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func newCoursesCmd() *cobra.Command {
	var out outputFlags
	var age, search string
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List published courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validOption(content.AgeGroups, age) {
				return fmt.Errorf("unknown age group %q (want one of %s)", age, strings.Join(optionValues(content.AgeGroups), ", "))
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			courses := content.SearchCourses(app.Catalog.Courses(cmd.Context(), age), search)
			return present.RenderCourses(cmd.OutOrStdout(), courses, opts)
		},
	}
	out.register(cmd, "plain|json")
	cmd.Flags().StringVar(&age, "age", content.FilterAll, "age group filter ("+strings.Join(optionValues(content.AgeGroups), "|")+")")
	cmd.Flags().StringVarP(&search, "search", "s", "", "fuzzy title search")
	_ = cmd.RegisterFlagCompletionFunc("age", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return optionValues(content.AgeGroups), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newArticlesCmd() *cobra.Command {
	var out outputFlags
	var category, search string
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List published articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validOption(content.Categories, category) {
				return fmt.Errorf("unknown category %q (want one of %s)", category, strings.Join(optionValues(content.Categories), ", "))
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			return present.RenderArticles(cmd.OutOrStdout(), app.Catalog.Articles(cmd.Context(), category, search), opts)
		},
	}
	out.register(cmd, "plain|json")
	cmd.Flags().StringVar(&category, "category", content.FilterAll, "category filter ("+strings.Join(optionValues(content.Categories), "|")+")")
	cmd.Flags().StringVarP(&search, "search", "s", "", "fuzzy title search")
	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return optionValues(content.Categories), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newArticleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Work with a single article",
	}
	cmd.AddCommand(newArticleShowCmd())
	return cmd
}

func newArticleShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an article with its rendered body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			view, err := app.Catalog.ArticleView(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("article %d: %w", id, err)
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			return present.RenderArticle(cmd.OutOrStdout(), view, opts)
		},
		ValidArgsFunction: completeArticleIDs,
	}
	out.register(cmd, "plain|pretty|markdown|json")
	return cmd
}

// parseArticleID accepts "4" as well as a completion candidate "4\tTitle".
func parseArticleID(s string) (int64, error) {
	s, _, _ = strings.Cut(s, "\t")
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid article id %q", s)
	}
	return id, nil
}

// completeArticleIDs offers "id<TAB>title" candidates ranked by fuzzy match.
func completeArticleIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var cfgPath string
	if f := cmd.Flag("config"); f != nil {
		cfgPath = f.Value.String()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := loadConfig(ctx, cfgPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	// Tab completion must not wait on the network; use cached or static content.
	app, err := wire.BuildOfflineApp(ctx, v, zap.NewNop())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer app.Close()

	articles := app.Catalog.Snapshot(ctx).Articles
	cands := make([]string, 0, len(articles))
	for _, a := range articles {
		cands = append(cands, fmt.Sprintf("%d\t%s", a.ID, a.Title))
	}
	return util.ScoreCompletions(toComplete, cands, 20), cobra.ShellCompDirectiveNoFileComp
}

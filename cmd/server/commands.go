package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"engagedash/internal/models"
	"engagedash/internal/validation"
)

// newPredictCmd creates the predict subcommand.
func newPredictCmd(flags *globalFlags) *cobra.Command {
	form := models.DefaultPredictionForm()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the engagement rate of a hypothetical post",
		Long: "Reconcile the given post attributes against the model's feature schema and print the predicted engagement rate.\n" +
			"Selecting a reference level, or none, leaves every indicator of that column at zero.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateStruct(&form); err != nil {
				return fmt.Errorf("invalid input: %w", err)
			}

			eng, _, _, err := flags.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			prediction, err := eng.Predict(form)
			if err != nil {
				return fmt.Errorf("prediction failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, prediction)
			}
			fmt.Fprintf(out, "engagement rate:                 %.6f\n", prediction.EngagementRate)
			fmt.Fprintf(out, "engagements per 1,000 followers: %.2f\n", prediction.PerThousandFollowers)
			fmt.Fprintf(out, "model:                           %s (schema v%s)\n", prediction.ModelVersion, prediction.SchemaVersion)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&form.Followers, "followers", form.Followers, "Follower count")
	f.IntVar(&form.HashtagCount, "hashtags", form.HashtagCount, "Number of hashtags")
	f.Float64Var(&form.LikeRate, "like-rate", form.LikeRate, "Likes per impression")
	f.Float64Var(&form.CommentRate, "comment-rate", form.CommentRate, "Comments per impression")
	f.Float64Var(&form.ShareRate, "share-rate", form.ShareRate, "Shares per impression")
	f.Float64Var(&form.LinkClickRate, "link-click-rate", form.LinkClickRate, "Link clicks per follower")
	f.IntVar(&form.CaptionLength, "caption-length", form.CaptionLength, "Caption length in words")
	f.IntVar(&form.Hour, "hour", form.Hour, "Posting hour, 0-23")
	f.StringSliceVar(&form.Platforms, "platform", nil, "Platform(s) the post goes out on")
	f.StringSliceVar(&form.ContentTypes, "content-type", nil, "Content type(s) of the post")
	f.StringVar(&form.DayOfWeek, "day", form.DayOfWeek, "Posting weekday, e.g. Monday")
	f.BoolVar(&asJSON, "json", false, "Print the prediction as JSON")

	return cmd
}

// newEvaluateCmd creates the evaluate subcommand.
func newEvaluateCmd(flags *globalFlags) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the model on the dataset",
		Long:  "Run the batch prediction path over the dataset and print RMSE, R² and the most important features.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, _, err := flags.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			out := cmd.OutOrStdout()
			perf := eng.Performance
			fmt.Fprintf(out, "model:    %s\n", eng.ModelVersion())
			fmt.Fprintf(out, "rows:     %d\n", eng.Rows())
			fmt.Fprintf(out, "samples:  %d\n", perf.Samples)
			if excluded := eng.Excluded(); len(excluded) > 0 {
				fmt.Fprintf(out, "excluded: %d (%s)\n", len(excluded), strings.Join(excluded, ", "))
			} else {
				fmt.Fprintln(out, "excluded: 0")
			}
			fmt.Fprintf(out, "rmse:     %.6f\n", perf.RMSE)
			fmt.Fprintf(out, "r2:       %.4f\n", perf.R2)

			importances := eng.Importances(top)
			if len(importances) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\ntop features:")
			for i, imp := range importances {
				fmt.Fprintf(out, "%3d. %-28s %.4f\n", i+1, imp.Feature, imp.Importance)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of features to list, 0 for all")

	return cmd
}

// newSchemaCmd creates the schema subcommand.
func newSchemaCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the frozen feature schema",
		Long:  "Print the feature schema both prediction paths use: ordered feature columns, categorical levels and each column's reference level.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, _, err := flags.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			schema := eng.Schema()
			references := make(map[string]string, len(schema.Categoricals))
			for _, cat := range schema.Categoricals {
				references[cat.Column] = cat.Reference()
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"schema":     schema,
				"references": references,
				"inferred":   eng.SchemaInferred,
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

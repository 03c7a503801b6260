package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-verifier/internal/observability"
	"github.com/jonathan/job-verifier/internal/pipeline"
	"github.com/jonathan/job-verifier/internal/types"
)

var (
	verifyFromFile string
	verifyJSON     bool
	verifyVerbose  bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [url]",
	Short: "Verify a single job posting",
	Long: `Fetch the posting at URL and run the full verification chain.

With --from-file, the posting is read from a JSON file instead of being fetched:
{"url", "title", "company", "description", "contact_emails", "contact_channels", "salary_mentions"}.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if verifyFromFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyFromFile, "from-file", "f", "", "Analyze a pre-scraped posting JSON file instead of fetching")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the result as JSON")
	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false, "Print stage progress and company intelligence")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	var opts []pipeline.Option
	if verifyVerbose && !verifyJSON {
		opts = append(opts, pipeline.WithProgress(func(e pipeline.ProgressEvent) {
			printer.PrintProgress(e.Step, e.Message)
		}))
	}

	verifier, release, err := newVerifier(ctx, appConfig, opts...)
	if err != nil {
		return err
	}
	defer release()

	var res *types.Result
	if verifyFromFile != "" {
		posting, err := loadPosting(verifyFromFile)
		if err != nil {
			return err
		}
		res, err = verifier.ProcessPosting(ctx, posting)
		if err != nil {
			return err
		}
	} else {
		res, err = verifier.ProcessJob(ctx, args[0])
		if err != nil {
			return err
		}
	}

	if verifyJSON {
		return writeJSON(out, res)
	}
	if verifyVerbose && res.Meta != nil {
		printer.PrintStructuredProfile(res.Meta.StructuredProfile)
		printer.PrintCompanyIntel(res.Meta.CompanyIntel)
	}
	printer.PrintResult(res)
	return nil
}

// loadPosting reads a pre-scraped posting from a JSON file.
func loadPosting(path string) (*types.Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read posting file %s", path)
	}
	var p types.Posting
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "parse posting file %s", path)
	}
	return &p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

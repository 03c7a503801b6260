package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-verifier/internal/report"
	"github.com/jonathan/job-verifier/internal/server"
	"github.com/jonathan/job-verifier/internal/types"
)

var (
	batchConcurrency int
	batchOut         string
	batchXLSX        string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Verify a list of job posting URLs",
	Long: `Read URLs one per line (blank lines and # comments are skipped), verify them with
bounded concurrency and write one JSON result per line. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Postings verified in parallel (defaults to batch.concurrency)")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Write JSON lines to this file instead of stdout")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Also write a spreadsheet report to this path")
	rootCmd.AddCommand(batchCmd)
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open url list %s", args[0])
		}
		defer f.Close() //nolint:errcheck
		in = f
	}
	urls, err := readURLs(in)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return eris.New("no URLs to verify")
	}

	out := cmd.OutOrStdout()
	if batchOut != "" {
		f, err := os.Create(batchOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", batchOut)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	concurrency := appConfig.Batch.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = batchConcurrency
	}

	verifier, release, err := newVerifier(ctx, appConfig)
	if err != nil {
		return err
	}
	defer release()

	results, err := runBatch(ctx, verifier, urls, concurrency, out)
	if err != nil {
		return err
	}

	if batchXLSX != "" {
		if err := report.SaveXLSX(batchXLSX, results, time.Now()); err != nil {
			return err
		}
		zap.L().Info("batch: report written", zap.String("path", batchXLSX))
	}
	return nil
}

// readURLs returns the non-empty, non-comment lines of r.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read url list")
	}
	return urls, nil
}

// runBatch verifies urls with at most concurrency in flight, writing each result as a
// JSON line as it completes. Results are returned in input order. An invalid URL is
// recorded as an error verdict rather than stopping the batch.
func runBatch(ctx context.Context, v server.Verifier, urls []string, concurrency int, out io.Writer) ([]*types.Result, error) {
	results := make([]*types.Result, len(urls))

	var mu sync.Mutex
	enc := json.NewEncoder(out)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))
	for i, u := range urls {
		g.Go(func() error {
			res, err := v.ProcessJob(gctx, u)
			if err != nil {
				res = &types.Result{
					Verdict:   types.VerdictError,
					Flags:     types.NewFlags(),
					Source:    types.Source{URL: u},
					Reason:    err.Error(),
					CreatedAt: time.Now(),
				}
			}
			results[i] = res

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(res); err != nil {
				return eris.Wrap(err, "write result")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("batch: complete", zap.Int("postings", len(urls)))
	return results, nil
}

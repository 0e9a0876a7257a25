package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/panel"
	"github.com/MrSnakeDoc/pterostats/internal/render"
)

type checkResult struct {
	id    string
	line  string
	err   error
	state string
}

// Check fetches every tracked server once and prints one line per server.
// It returns an error naming every server that could not be read.
func Check(ctx context.Context, env *config.Env, cfg *config.Config, log logger.Logger, out io.Writer) error {
	return check(ctx, panel.NewClient(env.PanelURL, env.PanelKey), cfg.MergedServerIDs(env),
		time.Duration(cfg.Timeout)*time.Second, log, out)
}

func check(ctx context.Context, api panel.API, ids []string, timeout time.Duration, log logger.Logger, out io.Writer) error {
	if len(ids) == 0 {
		return errors.New("no servers tracked, add ids to server_ids or PSS_SERVER_IDS")
	}

	results := make([]checkResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = checkOne(gctx, api, id, timeout)
			return nil
		})
	}
	_ = g.Wait()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVER\tSTATE\tDETAIL")

	var errs []error
	for _, r := range results {
		if r.err != nil {
			kind := panel.KindOf(r.err)
			log.Debug("check failed", logger.String("server_id", r.id), logger.Error(r.err))
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.id, "error", kind.Hint())
			errs = append(errs, fmt.Errorf("%s: %w", r.id, r.err))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.id, r.state, r.line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d servers unreachable: %w", len(errs), len(ids), errors.Join(errs...))
	}
	return nil
}

func checkOne(ctx context.Context, api panel.API, id string, timeout time.Duration) checkResult {
	res := checkResult{id: id}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	details, err := api.FetchDetails(dctx, id)
	cancel()
	if err != nil {
		res.err = err
		return res
	}

	uctx, cancel := context.WithTimeout(ctx, timeout)
	usage, err := api.FetchUsage(uctx, id)
	cancel()
	if err != nil {
		res.err = err
		return res
	}

	res.state = string(usage.State)
	res.line = fmt.Sprintf("%s, memory %s, uptime %s",
		details.Name,
		render.FormatBytes(usage.MemoryBytes),
		render.FormatUptime(usage.UptimeMs))
	return res
}

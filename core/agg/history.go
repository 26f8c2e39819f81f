package agg

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"golang.org/x/sync/errgroup"
)

// logQuery runs one history query. A git failure (empty repository, bad
// revision range) degrades to empty output. Anything else is fatal.
func logQuery(name string, query func() ([]byte, error)) ([]byte, error) {
	out, err := query()
	if errors.Is(err, contract.ErrGitCommandFailed) {
		contract.LogWarn(fmt.Sprintf("%s query returned no data", name), err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", name, err)
	}
	return out, nil
}

// RevisionFrequency returns the number of listed changes per non-excluded path.
func RevisionFrequency(ctx context.Context, cfg *contract.Config, client contract.GitClient, m *match.Matcher) (map[string]int, error) {
	out, err := logQuery("revision", func() ([]byte, error) {
		return client.RevisionLog(ctx, cfg.RepoPath, cfg.Since)
	})
	if err != nil {
		return nil, err
	}
	return parseRevisionLog(out, m), nil
}

// ChurnByFile returns cumulative added/deleted lines per non-excluded path.
func ChurnByFile(ctx context.Context, cfg *contract.Config, client contract.GitClient, m *match.Matcher) (map[string]schema.ChurnStats, error) {
	out, err := logQuery("churn", func() ([]byte, error) {
		return client.NumstatLog(ctx, cfg.RepoPath, cfg.Since)
	})
	if err != nil {
		return nil, err
	}
	return parseNumstatLog(out, m), nil
}

// AuthorCounts returns the number of distinct authors per non-excluded path.
func AuthorCounts(ctx context.Context, cfg *contract.Config, client contract.GitClient, m *match.Matcher) (map[string]int, error) {
	out, err := logQuery("author", func() ([]byte, error) {
		return client.AuthorLog(ctx, cfg.RepoPath, cfg.Since)
	})
	if err != nil {
		return nil, err
	}
	return parseAuthorLog(out, m), nil
}

// CommitMessages returns the commits touching each non-excluded path, newest first.
func CommitMessages(ctx context.Context, cfg *contract.Config, client contract.GitClient, m *match.Matcher) (map[string][]schema.CommitRecord, error) {
	out, err := logQuery("commit", func() ([]byte, error) {
		return client.CommitLog(ctx, cfg.RepoPath, cfg.Since)
	})
	if err != nil {
		return nil, err
	}
	return parseCommitLog(out, m), nil
}

// CollectHistory runs the four history queries and the size scan concurrently.
// Each task owns the map it fills, so nothing is shared until Wait returns.
func CollectHistory(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.HistoryOutput, map[string]int, error) {
	m := match.NewMatcher(cfg.Excludes)
	history := schema.NewHistoryOutput()
	var lines map[string]int

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		history.Revisions, err = RevisionFrequency(ctx, cfg, client, m)
		return err
	})
	g.Go(func() (err error) {
		history.Churn, err = ChurnByFile(ctx, cfg, client, m)
		return err
	})
	g.Go(func() (err error) {
		history.Authors, err = AuthorCounts(ctx, cfg, client, m)
		return err
	})
	g.Go(func() (err error) {
		history.Commits, err = CommitMessages(ctx, cfg, client, m)
		return err
	})
	g.Go(func() (err error) {
		lines, err = CountLines(ctx, cfg, client, m)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return history, lines, nil
}

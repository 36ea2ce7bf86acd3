package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

var reportTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Report re-polls every submitted pull request, records merge and close
// transitions in the status store, and renders a per-initiative summary to
// the console and to a markdown file under reports/.
func Report(ctx context.Context, rt *runtime.Context) error {
	splog := rt.Splog

	initiatives := rt.Store.Initiatives()
	if len(initiatives) == 0 {
		splog.Info("No initiatives tracked yet")
		splog.Tip("Run `lasso branch <name>` to start one")
		return nil
	}

	for _, name := range initiatives {
		for _, entry := range rt.Store.All(name) {
			if entry.State != initiative.StateSubmitted {
				continue
			}
			if err := refreshPRState(ctx, rt, entry); err != nil {
				splog.Warn("%s/%s: %v", name, entry.Repo, err)
			}
		}
	}

	var markdown strings.Builder
	markdown.WriteString(fmt.Sprintf("# %s campaign report\n\nGenerated %s.\n", rt.Config.Org, time.Now().Format("2006-01-02 15:04")))

	for _, name := range initiatives {
		entries := rt.Store.All(name)
		counts := make(map[initiative.State]int)
		for _, entry := range entries {
			counts[entry.State]++
		}

		fmt.Println(reportTitleStyle.Render(name))
		markdown.WriteString(fmt.Sprintf("\n## %s\n\n", name))
		markdown.WriteString("| Repository | State | Pull request |\n|---|---|---|\n")

		for _, entry := range entries {
			detail := ""
			if entry.State == initiative.StateError && entry.Detail != "" {
				detail = "  " + entry.Detail
			}
			fmt.Printf("  %-30s %-20s %s%s\n", entry.Repo, entry.State, entry.PRURL, detail)

			link := entry.PRURL
			if link != "" {
				link = fmt.Sprintf("[%s](%s)", filepath.Base(link), link)
			}
			markdown.WriteString(fmt.Sprintf("| %s | %s | %s |\n", entry.Repo, entry.State, link))
		}

		summary := summarizeCounts(counts, len(entries))
		fmt.Println("  " + summary)
		fmt.Println()
		markdown.WriteString("\n" + summary + "\n")
	}

	path := filepath.Join(rt.Workspace.ReportsDir(), rt.Config.Org+".md")
	if err := initiative.WriteFileAtomic(path, []byte(markdown.String()), 0644); err != nil {
		return err
	}
	splog.Info("Report written to %s", path)
	return nil
}

// refreshPRState polls one submitted PR and advances the entry to merged or
// closed when the remote side has resolved it
func refreshPRState(ctx context.Context, rt *runtime.Context, entry initiative.Entry) error {
	var prs []github.PullRequest
	err := rt.Limiter.Do(ctx, "poll pull request "+entry.Repo, func() error {
		var err error
		prs, err = rt.GitHub.ListPullRequests(ctx, rt.Config.Org, entry.Repo, rt.Config.User, entry.Initiative)
		return err
	})
	if err != nil {
		return err
	}
	if len(prs) == 0 {
		return nil
	}

	pr := prs[0]
	next := entry.State
	switch {
	case pr.Merged:
		next = initiative.StateMerged
	case pr.State == "closed":
		next = initiative.StateClosed
	}
	if next == entry.State {
		return nil
	}

	entry.State = next
	if entry.PRURL == "" {
		entry.PRURL = pr.HTMLURL
	}
	return rt.Store.Upsert(entry)
}

func summarizeCounts(counts map[initiative.State]int, total int) string {
	order := []initiative.State{
		initiative.StateNotStarted, initiative.StateChanged, initiative.StateReady,
		initiative.StateSubmitted, initiative.StateMerged, initiative.StateClosed,
		initiative.StateError,
	}
	var parts []string
	for _, state := range order {
		if counts[state] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[state], state))
		}
	}
	return fmt.Sprintf("%d repos: %s", total, strings.Join(parts, ", "))
}

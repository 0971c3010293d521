package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/runoshun/tpaws/internal/domain"
)

// changelogFetchLimit bounds concurrent ticket lookups.
const changelogFetchLimit = 8

// GenerateChangelogInput contains the parameters for building a changelog.
type GenerateChangelogInput struct {
	From    string // Start of the commit range (exclusive)
	To      string // End of the commit range; defaults to HEAD
	Prefix  string // Prepended to every entry
	Project string // Only keep tickets of this project; defaults to tpaws.json
	Plain   bool   // Plain text instead of markdown links
	NoTitle bool   // Omit the section headings
}

// GenerateChangelogOutput contains the changelog lines. Empty when no
// ticket was found in the range.
type GenerateChangelogOutput struct {
	Lines []string
}

// GenerateChangelog is the use case for listing the tickets shipped in a
// commit range.
type GenerateChangelog struct {
	git      domain.Git
	tickets  domain.TicketService
	projects domain.ProjectConfigStore
	logger   *slog.Logger
}

// NewGenerateChangelog creates a new GenerateChangelog use case.
func NewGenerateChangelog(
	git domain.Git,
	tickets domain.TicketService,
	projects domain.ProjectConfigStore,
	logger *slog.Logger,
) *GenerateChangelog {
	return &GenerateChangelog{git: git, tickets: tickets, projects: projects, logger: discardLogger(logger)}
}

// Execute collects ticket ids from the commit subjects in From..To, fetches
// the tickets concurrently and groups them into features and bug fixes.
// Entries keep the order of their first commit.
func (uc *GenerateChangelog) Execute(ctx context.Context, in GenerateChangelogInput) (*GenerateChangelogOutput, error) {
	if uc.tickets == nil {
		return nil, domain.ErrTargetProcessNotConfigured
	}
	to := in.To
	if to == "" {
		to = "HEAD"
	}

	subjects, err := uc.git.CommitSubjects(ctx, in.From, to)
	if err != nil {
		return nil, fmt.Errorf("read commit log: %w", err)
	}
	ids := changelogIDs(subjects)
	if len(ids) == 0 {
		return &GenerateChangelogOutput{}, nil
	}

	found := make([]*domain.Ticket, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(changelogFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			t, err := uc.tickets.GetTicket(gctx, id)
			if errors.Is(err, domain.ErrTicketNotFound) {
				uc.logger.Debug("changelog ticket not found", "ticket", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("get ticket %d: %w", id, err)
			}
			found[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	project := loadProjectName(uc.projects, "")
	if in.Project != "" {
		project = in.Project
	}

	var features, fixes []string
	for _, t := range found {
		if t == nil || !inProject(t, project) {
			continue
		}
		entry := changelogEntry(t, uc.tickets.BaseURL(), in.Prefix, in.Plain)
		if t.IsBug() {
			fixes = append(fixes, entry)
		} else {
			features = append(features, entry)
		}
	}

	var lines []string
	lines = appendSection(lines, "Features", features, in)
	lines = appendSection(lines, "Bug fixes", fixes, in)
	return &GenerateChangelogOutput{Lines: lines}, nil
}

// changelogIDs returns the unique ticket ids in commit order.
func changelogIDs(subjects []string) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, s := range subjects {
		id, ok := domain.TicketIDFromCommit(s)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func inProject(t *domain.Ticket, project string) bool {
	if project == "" || t.Project == nil {
		return true
	}
	return strings.EqualFold(t.Project.Name, project) || strings.EqualFold(t.Project.Abbreviation, project)
}

func changelogEntry(t *domain.Ticket, baseURL, prefix string, plain bool) string {
	name := prefix + strings.TrimSpace(t.Name)
	if plain {
		return fmt.Sprintf("- #%d %s", t.ID, name)
	}
	return fmt.Sprintf("- [#%d](%s) %s", t.ID, domain.TicketLink(baseURL, t.ID), name)
}

func appendSection(lines []string, title string, entries []string, in GenerateChangelogInput) []string {
	if len(entries) == 0 {
		return lines
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	if !in.NoTitle {
		if in.Plain {
			lines = append(lines, title+":")
		} else {
			lines = append(lines, "### "+title)
		}
	}
	return append(lines, entries...)
}

// Package publish pushes generated sites to GitHub so users can host them
// on GitHub Pages. Uses the git data API directly so a multi-file site can
// land as a single commit.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// File is one file to include in the published site.
type File struct {
	Path    string
	Content string
}

// Result describes a completed publish.
type Result struct {
	RepoURL   string
	CommitSHA string
}

// Publisher creates repositories and pushes site files on behalf of a user.
// Each call takes the user's own OAuth access token; the service holds no
// credentials of its own.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish creates repoName under the token's user if it does not exist,
// then commits files to the default branch in a single commit.
func (p *Publisher) Publish(ctx context.Context, accessToken, repoName, description, message string, files []File) (*Result, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("publish: access token is required")
	}
	if repoName == "" {
		return nil, fmt.Errorf("publish: repository name is required")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("publish: no files to publish")
	}

	client := p.client(ctx, accessToken)

	repo, created, err := p.ensureRepo(ctx, client, repoName, description)
	if err != nil {
		return nil, err
	}

	owner := repo.GetOwner().GetLogin()
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	sha, err := p.commitFiles(ctx, client, owner, repoName, branch, message, files)
	if err != nil {
		return nil, err
	}

	p.logger.Info("published site to GitHub",
		"repo", fmt.Sprintf("%s/%s", owner, repoName),
		"created", created,
		"commit", sha,
	)

	return &Result{
		RepoURL:   repo.GetHTMLURL(),
		CommitSHA: sha,
	}, nil
}

func (p *Publisher) client(ctx context.Context, accessToken string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// ensureRepo returns the named repository under the authenticated user,
// creating it (public, auto-initialized) when absent.
func (p *Publisher) ensureRepo(ctx context.Context, client *github.Client, repoName, description string) (*github.Repository, bool, error) {
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, false, fmt.Errorf("publish: get authenticated user: %w", err)
	}
	login := user.GetLogin()

	repo, resp, err := client.Repositories.Get(ctx, login, repoName)
	if err == nil {
		return repo, false, nil
	}
	if resp == nil || resp.StatusCode != 404 {
		return nil, false, fmt.Errorf("publish: get repository: %w", err)
	}

	repo, _, err = client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(repoName),
		Description: github.String(description),
		AutoInit:    github.Bool(true),
		Private:     github.Bool(false),
	})
	if err != nil {
		return nil, false, fmt.Errorf("publish: create repository: %w", err)
	}
	return repo, true, nil
}

// commitFiles writes files as one commit on top of the branch head and
// advances the ref. Returns the new commit SHA.
func (p *Publisher) commitFiles(ctx context.Context, client *github.Client, owner, repo, branch, message string, files []File) (string, error) {
	ref, _, err := client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("publish: get branch ref: %w", err)
	}
	parentSHA := ref.GetObject().GetSHA()

	entries := make([]*github.TreeEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, &github.TreeEntry{
			Path:    github.String(strings.TrimPrefix(f.Path, "/")),
			Mode:    github.String("100644"),
			Type:    github.String("blob"),
			Content: github.String(f.Content),
		})
	}

	tree, _, err := client.Git.CreateTree(ctx, owner, repo, parentSHA, entries)
	if err != nil {
		return "", fmt.Errorf("publish: create tree: %w", err)
	}

	commit, _, err := client.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(message),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: github.String(parentSHA)}},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("publish: create commit: %w", err)
	}

	ref.Object.SHA = commit.SHA
	if _, _, err := client.Git.UpdateRef(ctx, owner, repo, ref, false); err != nil {
		return "", fmt.Errorf("publish: update ref: %w", err)
	}

	return commit.GetSHA(), nil
}

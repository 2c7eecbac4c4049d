// Package devseed loads development job group definitions into the database
// so a fresh environment has something to run.
package devseed

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/conveyorhq/conveyor/internal/data"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
	"github.com/conveyorhq/conveyor/internal/service"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile is the YAML document shape for seed definitions.
type seedFile struct {
	Groups []seedGroup `yaml:"groups"`
}

type seedGroup struct {
	ID     string    `yaml:"id"`
	Name   string    `yaml:"name"`
	Active bool      `yaml:"active"`
	Jobs   []seedJob `yaml:"jobs"`
}

type seedJob struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Type           string     `yaml:"type"`
	ExecutionOrder int        `yaml:"execution_order"`
	Active         bool       `yaml:"active"`
	Tasks          []seedTask `yaml:"tasks"`
}

type seedTask struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Type           string         `yaml:"type"`
	ExecutionOrder int            `yaml:"execution_order"`
	Config         map[string]any `yaml:"config"`
	Requires       []string       `yaml:"requires"`
	OutputKey      string         `yaml:"output_key"`
	MaxRetries     int            `yaml:"max_retries"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Active         bool           `yaml:"active"`
}

// Seed parses the embedded seed definitions and stores any group not already
// present. Safe to run on every dev startup.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	var file seedFile
	if err := yaml.Unmarshal(seedYAML, &file); err != nil {
		return fmt.Errorf("parse seed definitions: %w", err)
	}

	repo, err := data.NewGroupRepo(data.GroupRepoOptions{DB: db, Logger: logger})
	if err != nil {
		return fmt.Errorf("create group repo: %w", err)
	}
	groups, err := service.NewGroupService(service.GroupServiceOptions{Repo: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("create group service: %w", err)
	}

	for _, sg := range file.Groups {
		group, err := sg.toModel()
		if err != nil {
			return fmt.Errorf("seed group %s: %w", sg.ID, err)
		}
		if _, err := groups.Create(ctx, group); err != nil {
			if apperrors.IsDuplicateID(err) {
				continue
			}
			return fmt.Errorf("seed group %s: %w", sg.ID, err)
		}
		logger.InfoContext(ctx, "seeded job group", "group_id", group.ID, "name", group.Name)
	}
	return nil
}

// toModel converts a seed group to the domain model by round-tripping through
// the model's JSON shape, which is the canonical definition format.
func (sg seedGroup) toModel() (*model.JobGroup, error) {
	doc := map[string]any{
		"id":     sg.ID,
		"name":   sg.Name,
		"active": sg.Active,
	}
	jobs := make([]map[string]any, 0, len(sg.Jobs))
	for _, sj := range sg.Jobs {
		tasks := make([]map[string]any, 0, len(sj.Tasks))
		for _, st := range sj.Tasks {
			task := map[string]any{
				"id":              st.ID,
				"name":            st.Name,
				"type":            st.Type,
				"execution_order": st.ExecutionOrder,
				"requires":        st.Requires,
				"output_key":      st.OutputKey,
				"max_retries":     st.MaxRetries,
				"timeout_seconds": st.TimeoutSeconds,
				"active":          st.Active,
			}
			if st.Config != nil {
				task["config"] = st.Config
			}
			tasks = append(tasks, task)
		}
		jobs = append(jobs, map[string]any{
			"id":              sj.ID,
			"name":            sj.Name,
			"type":            sj.Type,
			"execution_order": sj.ExecutionOrder,
			"active":          sj.Active,
			"tasks":           tasks,
		})
	}
	doc["jobs"] = jobs

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode definition: %w", err)
	}
	var group model.JobGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	return &group, nil
}

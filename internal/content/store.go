// Package content provides read-only access to the demo's JSON documents
// and images, keyed by logical name.
package content

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ashureev/kneeoa/internal/domain"
)

//go:embed fixtures
var fixtures embed.FS

// Logical document names.
const (
	AssessChat               = "assess_chat"
	AssessResult             = "assess_result"
	Cases                    = "cases"
	PredictParams            = "predict_params"
	StructuredReportTemplate = "structured_report_template"
	CustomPatientReport      = "custom_patient_report"
)

var (
	// ErrNotFound is returned when a document or image does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrMalformed is returned when a document exists but cannot be decoded.
	ErrMalformed = errors.New("content malformed")
)

// PlanName returns the logical name of an agent's plan document.
func PlanName(agent domain.Agent) string {
	return "plan/" + string(agent)
}

// fileFor maps a logical name to its file inside the content root.
func fileFor(name string) string {
	if agent, ok := strings.CutPrefix(name, "plan/"); ok {
		return agent + "_plan.json"
	}
	return name + ".json"
}

// Store reads documents from an fs.FS and caches their bytes.
// The cache is dropped whenever the watcher sees a change on disk.
type Store struct {
	fsys fs.FS
	dir  string // empty when backed by the embedded fixtures

	mu    sync.RWMutex
	cache map[string][]byte
}

// New creates a store over an arbitrary file system.
func New(fsys fs.FS) *Store {
	return &Store{fsys: fsys, cache: make(map[string][]byte)}
}

// Open returns a store for dir, or for the embedded demo fixtures when dir is empty.
func Open(dir string) (*Store, error) {
	if dir == "" {
		sub, err := fs.Sub(fixtures, "fixtures")
		if err != nil {
			return nil, fmt.Errorf("open embedded fixtures: %w", err)
		}
		return New(sub), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}
	s := New(os.DirFS(dir))
	s.dir = dir
	return s, nil
}

// Dir returns the on-disk root, or "" for embedded content.
func (s *Store) Dir() string {
	return s.dir
}

// Images returns the file system holding the image assets.
func (s *Store) Images() fs.FS {
	sub, err := fs.Sub(s.fsys, "images")
	if err != nil {
		return s.fsys
	}
	return sub
}

// HasImage reports whether an image exists at the content-relative path p.
func (s *Store) HasImage(p string) bool {
	p = path.Clean(strings.TrimPrefix(p, "/"))
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(s.fsys, p)
	return err == nil && !info.IsDir()
}

// Raw returns the bytes of a named document.
func (s *Store) Raw(name string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := fs.ReadFile(s.fsys, fileFor(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = data
	s.mu.Unlock()
	return data, nil
}

// Decode unmarshals a named document into v.
func (s *Store) Decode(name string, v any) error {
	data, err := s.Raw(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
	}
	return nil
}

// Invalidate drops every cached document.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()
}

// ChatScript returns the pre-computed assessment conversation.
func (s *Store) ChatScript() ([]domain.Turn, error) {
	var turns []domain.Turn
	if err := s.Decode(AssessChat, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// AssessmentReport returns the "default" structured analysis report.
// A document without a "default" entry yields an empty report.
func (s *Store) AssessmentReport() (domain.AssessmentReport, error) {
	var doc domain.Ordered[domain.AssessmentReport]
	if err := s.Decode(AssessResult, &doc); err != nil {
		return domain.AssessmentReport{}, err
	}
	report, _ := doc.Get("default")
	return report, nil
}

// Cases returns the therapy case catalog in document order.
func (s *Store) Cases() (domain.CaseCatalog, error) {
	var catalog domain.CaseCatalog
	if err := s.Decode(Cases, &catalog); err != nil {
		return domain.CaseCatalog{}, err
	}
	return catalog, nil
}

// PredictionParams returns the flat prediction parameter document.
func (s *Store) PredictionParams() (domain.PredictionParams, error) {
	var params domain.PredictionParams
	if err := s.Decode(PredictParams, &params); err != nil {
		return domain.PredictionParams{}, err
	}
	return params, nil
}

// ReportTemplate returns the structured radiograph report template.
func (s *Store) ReportTemplate() (domain.ReportTemplate, error) {
	var tmpl domain.ReportTemplate
	if err := s.Decode(StructuredReportTemplate, &tmpl); err != nil {
		return domain.ReportTemplate{}, err
	}
	return tmpl, nil
}

// CustomPatientReport returns the patient report exactly as stored, after
// checking that it is valid JSON.
func (s *Store) CustomPatientReport() (json.RawMessage, error) {
	data, err := s.Raw(CustomPatientReport)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: %w", CustomPatientReport, ErrMalformed)
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// ExercisePlan loads the exercise specialist's plan.
func (s *Store) ExercisePlan() (domain.ExercisePlan, error) {
	var plan domain.ExercisePlan
	err := s.Decode(PlanName(domain.AgentExercise), &plan)
	return plan, err
}

// SurgicalPharmaPlan loads the surgical and pharmacological plan.
func (s *Store) SurgicalPharmaPlan() (domain.SurgicalPharmaPlan, error) {
	var plan domain.SurgicalPharmaPlan
	err := s.Decode(PlanName(domain.AgentSurgicalPharma), &plan)
	return plan, err
}

// NutritionPsychologyPlan loads the nutrition and psychology plan.
func (s *Store) NutritionPsychologyPlan() (domain.NutritionPsychologyPlan, error) {
	var plan domain.NutritionPsychologyPlan
	err := s.Decode(PlanName(domain.AgentNutritionPsychology), &plan)
	return plan, err
}

// ClinicalIntegrationPlan loads the decision-making agent's merged plan.
func (s *Store) ClinicalIntegrationPlan() (domain.ClinicalIntegrationPlan, error) {
	var plan domain.ClinicalIntegrationPlan
	err := s.Decode(PlanName(domain.AgentClinicalIntegration), &plan)
	return plan, err
}

// LoadPlans reads all four plan documents concurrently and returns the
// first failure.
func (s *Store) LoadPlans(ctx context.Context) (domain.PlanSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlanSet{}, err
	}
	var set domain.PlanSet
	var g errgroup.Group

	g.Go(func() (err error) {
		set.Exercise, err = s.ExercisePlan()
		return err
	})
	g.Go(func() (err error) {
		set.SurgicalPharma, err = s.SurgicalPharmaPlan()
		return err
	})
	g.Go(func() (err error) {
		set.NutritionPsychology, err = s.NutritionPsychologyPlan()
		return err
	})
	g.Go(func() (err error) {
		set.ClinicalIntegration, err = s.ClinicalIntegrationPlan()
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.PlanSet{}, err
	}
	return set, nil
}

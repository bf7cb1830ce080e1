package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
	"github.com/obinnaokafor/symptomsense/backend/pkg/textutil"
)

// knowledgeFile is the on-disk shape of config/knowledge_base.json.
type knowledgeFile struct {
	StopWords  []string              `json:"stop_words"`
	Symptoms   []*entities.Symptom   `json:"symptoms"`
	Conditions []*entities.Condition `json:"conditions"`
}

// FileSource loads the knowledge base from the JSON artifacts on disk.
// It is the default source; a missing or malformed file is startup-fatal.
type FileSource struct {
	knowledgeBasePath     string
	emergencyProfilesPath string
}

// NewFileSource creates a file-backed knowledge source.
func NewFileSource(knowledgeBasePath, emergencyProfilesPath string) repositories.KnowledgeSource {
	return &FileSource{
		knowledgeBasePath:     knowledgeBasePath,
		emergencyProfilesPath: emergencyProfilesPath,
	}
}

// LoadKnowledgeBase reads, parses and validates the knowledge base file.
func (s *FileSource) LoadKnowledgeBase(ctx context.Context) (*entities.KnowledgeBase, error) {
	data, err := os.ReadFile(s.knowledgeBasePath)
	if err != nil {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("failed to read knowledge base file %s", s.knowledgeBasePath), err)
	}

	var file knowledgeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("failed to parse knowledge base file %s: %v", s.knowledgeBasePath, err))
	}

	// Hand-edited artifacts drift: "Chest Pain" and "chest_pain" must
	// mean the same symptom, so ids are canonicalized before validation.
	for _, sym := range file.Symptoms {
		sym.ID = entities.SymptomID(textutil.NormalizeIdentifier(string(sym.ID)))
	}
	for _, cond := range file.Conditions {
		for i, id := range cond.Symptoms {
			cond.Symptoms[i] = entities.SymptomID(textutil.NormalizeIdentifier(string(id)))
		}
	}

	return entities.NewKnowledgeBase(file.Conditions, file.Symptoms, file.StopWords)
}

// LoadEmergencyProfiles reads and validates the red-flag profile file.
func (s *FileSource) LoadEmergencyProfiles(ctx context.Context) ([]*entities.EmergencyProfile, error) {
	data, err := os.ReadFile(s.emergencyProfilesPath)
	if err != nil {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("failed to read emergency profiles file %s", s.emergencyProfilesPath), err)
	}

	var profiles []*entities.EmergencyProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("failed to parse emergency profiles file %s: %v", s.emergencyProfilesPath, err))
	}

	if err := ValidateProfiles(profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// ValidateProfiles rejects profile lists that could never fire or that
// would fire with an unknown urgency. Shared with the Postgres source.
func ValidateProfiles(profiles []*entities.EmergencyProfile) error {
	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		if p.ID == "" {
			return apperrors.NewValidationError(fmt.Sprintf("emergency profile at index %d has no id", i))
		}
		if _, dup := seen[p.ID]; dup {
			return apperrors.NewValidationError("duplicate emergency profile id: " + p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.ConditionName == "" {
			return apperrors.NewValidationError("emergency profile " + p.ID + " has no condition name")
		}
		if len(p.RequiredSymptoms) == 0 {
			return apperrors.NewValidationError("emergency profile " + p.ID + " has no required symptoms")
		}
		switch p.Urgency {
		case entities.UrgencyCritical, entities.UrgencyUrgent:
		default:
			return apperrors.NewValidationError(
				fmt.Sprintf("emergency profile %s has invalid urgency %q", p.ID, p.Urgency))
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"letraz-autoapply/internal/validation"
	"letraz-autoapply/pkg/models"
)

// LoadProfile reads and validates the applicant profile YAML at path.
// Environment references are expanded the same way as in the main config.
func LoadProfile(path string) (*models.ApplicantProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read applicant profile: %w", err)
	}

	profile := &models.ApplicantProfile{}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), profile); err != nil {
		return nil, fmt.Errorf("failed to parse applicant profile %s: %w", path, err)
	}

	if err := validation.Struct(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

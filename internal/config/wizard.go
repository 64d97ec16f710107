package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to liferx! Let's configure the automation backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Runtime environment.
	envPrompt := promptui.Select{
		Label: "Runtime environment",
		Items: []string{"development", "production"},
	}
	_, envStr, err := envPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("env selection: %w", err)
	}
	cfg.Env = RuntimeEnv(envStr)

	// 2. Internal shared secret. Required outside development.
	secretPrompt := promptui.Prompt{
		Label: "Internal shared secret (blank allowed in development only)",
		Mask:  '*',
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	cfg.InternalSecret = secret

	// 3. Default org (tenant) id.
	orgPrompt := promptui.Prompt{
		Label:   "Default org id (UUID)",
		Default: cfg.DefaultOrgID,
		Validate: func(s string) error {
			if _, err := uuid.Parse(s); err != nil {
				return fmt.Errorf("must be a valid UUID")
			}
			return nil
		},
	}
	orgID, err := orgPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("org id: %w", err)
	}
	cfg.DefaultOrgID = orgID

	// 4. Hub endpoint. Blank runs the proxy in simulated mode.
	hubPrompt := promptui.Prompt{
		Label:   "Hub URL (blank for simulated streaming)",
		Default: "",
	}
	hubURL, err := hubPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("hub url: %w", err)
	}
	cfg.HubURL = hubURL

	// 5. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration written to %s\n", path)
	return cfg, nil
}

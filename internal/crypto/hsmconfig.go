// Package crypto provides the key material used to issue certificates.
// This file contains HSM configuration types and the YAML loader.
package crypto

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HSMConfig represents the YAML configuration for an HSM holding an issuer key.
type HSMConfig struct {
	Type   string         `yaml:"type"`
	PKCS11 PKCS11Settings `yaml:"pkcs11"`
}

// PKCS11Settings holds PKCS#11 specific configuration.
type PKCS11Settings struct {
	// Lib is the path to the PKCS#11 library (.so/.dylib/.dll)
	Lib string `yaml:"lib"`

	// Token identifies the token by label
	Token string `yaml:"token"`

	// TokenSerial identifies the token by serial number
	TokenSerial string `yaml:"token_serial"`

	// Slot identifies the token by slot ID
	Slot *uint `yaml:"slot"`

	// PinEnv is the name of the environment variable containing the PIN
	PinEnv string `yaml:"pin_env"`
}

// LoadHSMConfig loads HSM configuration from a YAML file.
func LoadHSMConfig(path string) (*HSMConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HSM config file: %w", err)
	}
	return ParseHSMConfig(data)
}

// ParseHSMConfig parses and validates HSM configuration YAML.
func ParseHSMConfig(data []byte) (*HSMConfig, error) {
	var cfg HSMConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse HSM config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HSM config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the HSM configuration is valid.
func (c *HSMConfig) Validate() error {
	if c.Type != "pkcs11" {
		return fmt.Errorf("unsupported HSM type: %q (only 'pkcs11' is supported)", c.Type)
	}

	if c.PKCS11.Lib == "" {
		return fmt.Errorf("pkcs11.lib is required")
	}

	if c.PKCS11.Token == "" && c.PKCS11.TokenSerial == "" && c.PKCS11.Slot == nil {
		return fmt.Errorf("at least one of pkcs11.token, pkcs11.token_serial, or pkcs11.slot is required")
	}

	if c.PKCS11.PinEnv == "" {
		return fmt.Errorf("pkcs11.pin_env is required (PIN must be provided via environment variable)")
	}

	return nil
}

// GetPIN retrieves the PIN from the environment variable.
func (c *HSMConfig) GetPIN() (string, error) {
	pin := os.Getenv(c.PKCS11.PinEnv)
	if pin == "" {
		return "", fmt.Errorf("environment variable %s is not set or empty", c.PKCS11.PinEnv)
	}
	return pin, nil
}

// ToPKCS11Config converts HSMConfig to the signer configuration for one key.
func (c *HSMConfig) ToPKCS11Config(keyLabel, keyID string) (*PKCS11Config, error) {
	pin, err := c.GetPIN()
	if err != nil {
		return nil, err
	}

	return &PKCS11Config{
		ModulePath:  c.PKCS11.Lib,
		TokenLabel:  c.PKCS11.Token,
		TokenSerial: c.PKCS11.TokenSerial,
		SlotID:      c.PKCS11.Slot,
		PIN:         pin,
		KeyLabel:    keyLabel,
		KeyID:       keyID,
	}, nil
}

// PKCS11Config holds the parameters needed to open an HSM-resident key.
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 module
	ModulePath string

	// TokenLabel is the label of the token to use
	TokenLabel string

	// TokenSerial is the serial number of the token (alternative to TokenLabel)
	TokenSerial string

	// SlotID is the slot ID (optional, use TokenLabel if not specified)
	SlotID *uint

	// PIN is the user PIN for the token
	PIN string

	// KeyLabel is the CKA_LABEL of the key
	KeyLabel string

	// KeyID is the CKA_ID of the key (hex encoded)
	KeyID string
}

func (c PKCS11Config) validate() error {
	if c.ModulePath == "" {
		return fmt.Errorf("PKCS#11 module path is required")
	}
	if c.KeyLabel == "" && c.KeyID == "" {
		return fmt.Errorf("at least one of key_label or key_id is required")
	}
	return nil
}

// OpenHSMSigner loads the HSM config at configPath and opens the key
// identified by keyLabel and/or keyID.
func OpenHSMSigner(configPath, keyLabel, keyID string) (Signer, error) {
	cfg, err := LoadHSMConfig(configPath)
	if err != nil {
		return nil, err
	}

	p11, err := cfg.ToPKCS11Config(keyLabel, keyID)
	if err != nil {
		return nil, err
	}

	signer, err := NewPKCS11Signer(*p11)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

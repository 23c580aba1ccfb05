package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFileHash verifies a file against an expected BLAKE3 hash.
func VerifyFileHash(filePath, expectedHash string) error {
	actualHash, err := ComputeBlake3Hash(filePath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actualHash != expectedHash {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(filePath), expectedHash, actualHash)
	}

	return nil
}

// Lock computes the BLAKE3 hash of the config file and writes the .checksums
// manifest next to it, authorizing the current state.
func Lock(configPath string) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	hash, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", absPath, err)
	}

	manifest := ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      map[string]string{filepath.Base(absPath): hash},
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal checksums: %w", err)
	}

	// Write with restrictive permissions (contains expected hashes)
	checksumPath := filepath.Join(filepath.Dir(absPath), ".checksums")
	if err := os.WriteFile(checksumPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}

	return nil
}

// VerifyIntegrity checks the config file against the .checksums manifest.
// A missing manifest is a warning (returned as a non-empty string), a hash
// mismatch is an error.
func VerifyIntegrity(configPath string) (warning string, err error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	checksumPath := filepath.Join(filepath.Dir(absPath), ".checksums")
	data, err := os.ReadFile(checksumPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("no .checksums manifest found at %s; run 'groundworkd config lock' to enable integrity verification", checksumPath), nil
		}
		return "", fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return "", fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}

	expectedHash, ok := manifest.Hashes[filepath.Base(absPath)]
	if !ok {
		return "", fmt.Errorf("config file %s has no hash in checksums (run 'groundworkd config lock')", filepath.Base(absPath))
	}

	if err := VerifyFileHash(absPath, expectedHash); err != nil {
		return "", fmt.Errorf("config verification failed: %w\n"+
			"If you edited this file intentionally, run: groundworkd config lock", err)
	}

	return "", nil
}

// SPDX-License-Identifier: MPL-2.0

// Package worlddir decides which world directory a command operates on.
//
// addonctl runs either from a dedicated server root, where worlds live under
// worlds/<name>, or from inside a single world directory.
package worlddir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TypeAuto asks Resolve to detect the directory type.
	TypeAuto Type = iota
	// TypeServer is a dedicated server root containing worlds/.
	TypeServer
	// TypeLevel is a single world directory.
	TypeLevel
)

// WorldsDir is the server-root subdirectory holding worlds.
const WorldsDir = "worlds"

var (
	// ErrIllegalWorkingDir is returned when a directory is neither a server
	// root nor a world.
	ErrIllegalWorkingDir = errors.New("working directory is neither a server root nor a world")

	// ErrWorldNotFound is returned when the named world does not exist under worlds/.
	ErrWorldNotFound = errors.New("world not found")

	// ErrInvalidType is returned by ParseType for unknown names.
	ErrInvalidType = errors.New("invalid directory type")

	levelMarkers = []string{"levelname.txt", "db", "level.dat", "level.dat_old"}
)

type (
	// Type is the kind of working directory.
	Type int

	// Options configures Resolve.
	Options struct {
		// Dir is the working directory. Empty means the process working directory.
		Dir string
		// World is the world name used when Dir is a server root.
		World string
		// Force skips detection unless it is TypeAuto.
		Force Type
	}

	// WorldNotFoundError names the missing world.
	WorldNotFoundError struct {
		World string
		Path  string
	}
)

// Error implements the error interface.
func (e *WorldNotFoundError) Error() string {
	return fmt.Sprintf("world %q does not exist (looked in %s)", e.World, e.Path)
}

// Unwrap returns ErrWorldNotFound.
func (e *WorldNotFoundError) Unwrap() error { return ErrWorldNotFound }

// String returns "auto", "server" or "level".
func (t Type) String() string {
	switch t {
	case TypeServer:
		return "server"
	case TypeLevel:
		return "level"
	default:
		return "auto"
	}
}

// ParseType parses a directory type name. "bds" is accepted as an alias
// for "server".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TypeAuto, nil
	case "server", "bds":
		return TypeServer, nil
	case "level", "world":
		return TypeLevel, nil
	default:
		return TypeAuto, fmt.Errorf("%w %q (expected auto, server or level)", ErrInvalidType, s)
	}
}

// Detect classifies dir. World markers are checked first, so a world copied
// into a server root is still treated as a world.
func Detect(dir string) (Type, error) {
	if IsLevel(dir) {
		return TypeLevel, nil
	}
	ok, err := IsServerRoot(dir)
	if err != nil {
		return TypeAuto, err
	}
	if ok {
		return TypeServer, nil
	}
	return TypeAuto, fmt.Errorf("%s: %w", dir, ErrIllegalWorkingDir)
}

// IsLevel reports whether dir holds a world: levelname.txt, db/, level.dat
// and level.dat_old.
func IsLevel(dir string) bool {
	for _, name := range levelMarkers {
		if !exists(filepath.Join(dir, name)) {
			return false
		}
	}
	return true
}

// IsServerRoot reports whether dir holds a dedicated server: either the
// server executable, or worlds/ next to bedrock_server_how_to.html.
func IsServerRoot(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("unable to read working directory: %w", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "bedrock_server") && !e.IsDir() && !strings.HasSuffix(e.Name(), ".html") {
			return true, nil
		}
	}
	return exists(filepath.Join(dir, WorldsDir)) && exists(filepath.Join(dir, "bedrock_server_how_to.html")), nil
}

// Resolve returns the world directory the command should operate on.
func Resolve(opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	typ := opts.Force
	if typ == TypeAuto {
		detected, err := Detect(dir)
		if err != nil {
			return "", err
		}
		typ = detected
	}

	if typ == TypeLevel {
		return dir, nil
	}

	world := filepath.Join(dir, WorldsDir, opts.World)
	if opts.World == "" || !isDir(world) {
		return "", &WorldNotFoundError{World: opts.World, Path: filepath.Join(dir, WorldsDir)}
	}
	return world, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

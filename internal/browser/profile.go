// internal/browser/profile.go
package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

// DefaultProfileDir is the directory Chromium-based browsers create first.
const DefaultProfileDir = "Default"

// numbered profiles scanned after Default.
const maxNumberedProfiles = 9

// Profile identifies one browser profile inside a user-data root.
type Profile struct {
	// Dir is the profile directory name, e.g. "Profile 2".
	Dir string `json:"dir"`
	// Name is the display name from the Preferences file, if readable.
	Name string `json:"name"`
	// Path is the absolute profile directory.
	Path string `json:"path"`
}

// DefaultUserDataRoot returns the platform's user-data root for flavor.
func DefaultUserDataRoot(flavor string) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		if flavor == FlavorChrome {
			return filepath.Join(local, "Google", "Chrome", "User Data"), nil
		}
		return filepath.Join(local, "Microsoft", "Edge", "User Data"), nil
	case "darwin":
		if flavor == FlavorChrome {
			return filepath.Join(home, "Library", "Application Support", "Google", "Chrome"), nil
		}
		return filepath.Join(home, "Library", "Application Support", "Microsoft Edge"), nil
	default:
		if flavor == FlavorChrome {
			return filepath.Join(home, ".config", "google-chrome"), nil
		}
		return filepath.Join(home, ".config", "microsoft-edge"), nil
	}
}

// UserDataRoot resolves the configured root, falling back to the platform default.
func (c Config) UserDataRoot() (string, error) {
	if c.UserDataDir == "" {
		return DefaultUserDataRoot(c.Flavor)
	}
	root, err := homedir.Expand(c.UserDataDir)
	if err != nil {
		return "", fmt.Errorf("invalid browser.user_data_dir %q: %w", c.UserDataDir, err)
	}
	return root, nil
}

func candidateProfileDirs() []string {
	dirs := []string{DefaultProfileDir}
	for i := 1; i <= maxNumberedProfiles; i++ {
		dirs = append(dirs, "Profile "+strconv.Itoa(i))
	}
	return dirs
}

// readProfileName extracts profile.name from a Preferences file.
func readProfileName(profilePath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(profilePath, "Preferences"))
	if err != nil {
		return "", err
	}
	name := jsoniter.Get(data, "profile", "name")
	if err := name.LastError(); err != nil {
		return "", fmt.Errorf("preferences in %s carry no profile name: %w", profilePath, err)
	}
	return name.ToString(), nil
}

// ResolveProfile locates the profile called name under root. The Default
// and numbered profile directories are matched by the display name in
// their Preferences first, then a directory literally called name is
// accepted. An empty name selects Default.
func ResolveProfile(root, name string) (Profile, error) {
	if name == "" {
		name = DefaultProfileDir
	}

	for _, dir := range candidateProfileDirs() {
		path := filepath.Join(root, dir)
		display, err := readProfileName(path)
		if err != nil {
			continue
		}
		if display == name {
			return Profile{Dir: dir, Name: display, Path: path}, nil
		}
	}

	path := filepath.Join(root, name)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		display, _ := readProfileName(path)
		return Profile{Dir: name, Name: display, Path: path}, nil
	}

	available, err := listDirs(root)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q not found: %w", name, err)
	}
	return Profile{}, fmt.Errorf("profile %q not found. Available profiles: %v", name, available)
}

// ListProfiles returns every directory under root that looks like a
// profile (it has a readable Preferences file), sorted by directory name.
func ListProfiles(root string) ([]Profile, error) {
	dirs, err := listDirs(root)
	if err != nil {
		return nil, err
	}
	var profiles []Profile
	for _, dir := range dirs {
		path := filepath.Join(root, dir)
		display, err := readProfileName(path)
		if err != nil {
			continue
		}
		profiles = append(profiles, Profile{Dir: dir, Name: display, Path: path})
	}
	return profiles, nil
}

func listDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("user data directory %s does not exist", root)
		}
		return nil, fmt.Errorf("cannot read user data directory %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

package helper

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the directory searched for configuration files.
const ConfigDirEnv = "DEALERHUB_CONFIG_DIR"

// GetCfgPath returns the path to the configuration file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. $DEALERHUB_CONFIG_DIR/{filename} when the variable is set and the file exists
// 3. ./{filename} and ./configs/{filename}
// 4. Otherwise, fallback to /etc/dealerhub/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}

	if filepath.IsAbs(filename) {
		return filename
	}

	var dirs []string
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		dirs = append(dirs, dir)
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		dirs = append(dirs, wd, filepath.Join(wd, "configs"))
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs
		}
	}

	return filepath.Join("/etc/dealerhub", filename)
}

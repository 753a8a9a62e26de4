package hosttheory

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Well-known environment names.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Environment describes the host's runtime surroundings. It is constructed
// once during Build and read-only thereafter.
type Environment struct {
	applicationName string
	environmentName string
	contentRoot     string
	platform        Platform
	files           afero.Fs
}

func newEnvironment(appName, envName, contentRoot string, platform Platform, files afero.Fs) *Environment {
	if envName == "" {
		envName = EnvProduction
	}
	if platform == "" {
		platform = DetectPlatform()
	}
	if files == nil {
		files = afero.NewBasePathFs(afero.NewOsFs(), contentRoot)
	}
	return &Environment{
		applicationName: appName,
		environmentName: envName,
		contentRoot:     contentRoot,
		platform:        platform,
		files:           files,
	}
}

func (e *Environment) ApplicationName() string {
	return e.applicationName
}

func (e *Environment) EnvironmentName() string {
	return e.environmentName
}

// ContentRoot is the absolute directory the host treats as its root for
// content files and relative config paths.
func (e *Environment) ContentRoot() string {
	return e.contentRoot
}

func (e *Environment) Platform() Platform {
	return e.platform
}

// Files is a file provider rooted at the content root.
func (e *Environment) Files() afero.Fs {
	return e.files
}

func (e *Environment) IsDevelopment() bool {
	return e.environmentName == EnvDevelopment
}

func (e *Environment) IsStaging() bool {
	return e.environmentName == EnvStaging
}

func (e *Environment) IsProduction() bool {
	return e.environmentName == EnvProduction
}

// resolveContentRoot applies the content-root rules: empty uses the base
// directory, absolute paths pass through, relative paths join the absolute
// base directory.
func resolveContentRoot(contentRoot, baseDir string) string {
	switch {
	case contentRoot == "":
		return baseDir
	case filepath.IsAbs(contentRoot):
		return contentRoot
	default:
		return filepath.Join(baseDir, contentRoot)
	}
}

// baseDirectory returns the process base directory as an absolute path.
func baseDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return string(filepath.Separator)
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		return wd
	}
	return abs
}

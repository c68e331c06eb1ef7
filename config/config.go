// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Assets  []AssetConfig `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// CameraConfig holds the initial camera placement.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	Up     [3]float32 `yaml:"up"`
	FovY   float32    `yaml:"fov_y"`  // degrees
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
}

// AssetConfig describes one model to load at startup.
type AssetConfig struct {
	// Path is the glTF/GLB file path.
	Path string `yaml:"path"`

	// Animation is the preferred animation clip name. When empty or not found,
	// the first declared clip is used; with no clips the model stays static.
	Animation string `yaml:"animation"`

	// Translation, RotationEuler (degrees), and Scale compose the model's base
	// transform, applied as the implicit parent of the scene roots.
	Translation   [3]float32 `yaml:"translation"`
	RotationEuler [3]float32 `yaml:"rotation_euler"`
	Scale         [3]float32 `yaml:"scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "rig viewer",
			VSync:  true,
		},
		Camera: CameraConfig{
			Eye:    [3]float32{0, 1.5, 4},
			Target: [3]float32{0, 1, 0},
			Up:     [3]float32{0, 1, 0},
			FovY:   60,
			Near:   0.1,
			Far:    1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

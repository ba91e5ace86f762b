package sim

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default working rectangle width.
	DefaultWidth = 800.0

	// DefaultHeight is the default working rectangle height.
	DefaultHeight = 600.0

	// DefaultBaseRadius is the radius of an irrelevant item.
	DefaultBaseRadius = 20.0

	// DefaultMaxRadius is the radius of a perfectly relevant item.
	DefaultMaxRadius = 120.0

	// DefaultFriction scales velocity once per tick.
	DefaultFriction = 0.9

	// DefaultStiffness scales the overlap correction.
	DefaultStiffness = 0.05

	// DefaultOverlapAllow shrinks the contact distance so neighboring circles
	// may overlap and cells stay tightly packed.
	DefaultOverlapAllow = 0.8

	// DefaultRadiusSmoothing is the per-tick blend factor toward the target radius.
	DefaultRadiusSmoothing = 0.1

	// DefaultCenterGain is the homing acceleration toward the rectangle midpoint.
	DefaultCenterGain = 0.001

	// DefaultCollisionPasses is the number of relaxation sweeps per tick.
	DefaultCollisionPasses = 1
)

// Config holds the working rectangle and every tunable of the simulation.
// The zero value is not valid; start from [DefaultConfig].
type Config struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`

	BaseRadius float64 `toml:"base_radius" json:"base_radius"`
	MaxRadius  float64 `toml:"max_radius" json:"max_radius"`

	Friction        float64 `toml:"friction" json:"friction"`
	Stiffness       float64 `toml:"stiffness" json:"stiffness"`
	OverlapAllow    float64 `toml:"overlap_allow" json:"overlap_allow"`
	RadiusSmoothing float64 `toml:"radius_smoothing" json:"radius_smoothing"`
	CenterGain      float64 `toml:"center_gain" json:"center_gain"`

	// CollisionPasses > 1 iterates the relaxation within a tick for faster
	// settling. 1 reproduces the single-sweep behavior.
	CollisionPasses int `toml:"collision_passes" json:"collision_passes"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		BaseRadius:      DefaultBaseRadius,
		MaxRadius:       DefaultMaxRadius,
		Friction:        DefaultFriction,
		Stiffness:       DefaultStiffness,
		OverlapAllow:    DefaultOverlapAllow,
		RadiusSmoothing: DefaultRadiusSmoothing,
		CenterGain:      DefaultCenterGain,
		CollisionPasses: DefaultCollisionPasses,
	}
}

// Bounds returns the working rectangle.
func (c Config) Bounds() geom.Rect { return geom.Rect{W: c.Width, H: c.Height} }

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	if err := errors.ValidatePositive("width", c.Width); err != nil {
		return err
	}
	if err := errors.ValidatePositive("height", c.Height); err != nil {
		return err
	}
	if err := errors.ValidatePositive("base_radius", c.BaseRadius); err != nil {
		return err
	}
	if err := errors.ValidatePositive("max_radius", c.MaxRadius); err != nil {
		return err
	}
	if c.MaxRadius < c.BaseRadius {
		return errors.New(errors.ErrCodeInvalidConfig,
			"max_radius (%g) must not be smaller than base_radius (%g)", c.MaxRadius, c.BaseRadius)
	}
	if err := errors.ValidateRange("friction", c.Friction, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidateRange("stiffness", c.Stiffness, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidatePositive("overlap_allow", c.OverlapAllow); err != nil {
		return err
	}
	if err := errors.ValidateRange("radius_smoothing", c.RadiusSmoothing, 0, 1); err != nil {
		return err
	}
	if c.RadiusSmoothing == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "radius_smoothing must be greater than 0")
	}
	if err := errors.ValidateRange("center_gain", c.CenterGain, 0, 1); err != nil {
		return err
	}
	if c.CollisionPasses < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "collision_passes must be at least 1, got %d", c.CollisionPasses)
	}
	return nil
}

// LoadConfigFile reads a TOML file and overlays its values on [DefaultConfig].
// Keys absent from the file keep their defaults. The result is validated.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML on top of the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EncodeTOML renders the configuration as TOML.
func (c Config) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

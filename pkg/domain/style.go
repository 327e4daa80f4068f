package domain

// BlendMode names a compositing operator. The core only carries it around.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
)

// Style holds the presentation attributes that a reincarnated clone inherits.
type Style struct {
	Opacity float64   `json:"opacity" yaml:"opacity" mapstructure:"opacity"`
	Visible bool      `json:"visible" yaml:"visible" mapstructure:"visible"`
	Blend   BlendMode `json:"blend,omitempty" yaml:"blend,omitempty" mapstructure:"blend"`
	Locked  bool      `json:"locked,omitempty" yaml:"locked,omitempty" mapstructure:"locked"`
}

// DefaultStyle is fully opaque, visible, normal blending.
func DefaultStyle() Style {
	return Style{Opacity: 1, Visible: true, Blend: BlendNormal}
}

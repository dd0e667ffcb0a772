package parameters

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"github.com/spf13/viper"
)

// Parameters holds every tunable of the solver. Alpha/Beta/Gama weigh the
// objective, the shaw/p group steers removal, the w/annealing group steers
// simulated annealing, and the iteration group bounds the search.
type Parameters struct {
	Alpha float64 `json:"alpha" mapstructure:"alpha" validate:"gt=0"`
	Beta  float64 `json:"beta" mapstructure:"beta" validate:"gt=0"`
	Gama  float64 `json:"gama" mapstructure:"gama" validate:"gt=0"`

	ShawParam1 float64 `json:"shaw_param_1" mapstructure:"shaw_param_1"`
	ShawParam2 float64 `json:"shaw_param_2" mapstructure:"shaw_param_2"`
	ShawParam3 float64 `json:"shaw_param_3" mapstructure:"shaw_param_3"`
	ShawParam4 float64 `json:"shaw_param_4" mapstructure:"shaw_param_4"`

	P      int `json:"p" mapstructure:"p" validate:"gte=1"`
	PWorst int `json:"p_worst" mapstructure:"p_worst" validate:"gte=1"`

	W          float64 `json:"w" mapstructure:"w" validate:"gt=0,lt=1"`
	AnnealingP float64 `json:"annealing_p" mapstructure:"annealing_p" validate:"gt=0,lt=1"`
	C          float64 `json:"c" mapstructure:"c" validate:"gt=0,lt=1"`

	R          float64 `json:"r" mapstructure:"r" validate:"gt=0,lt=1"`
	RewardAdds []int   `json:"reward_adds" mapstructure:"reward_adds" validate:"len=3,dive,gte=0"`

	Eta           float64 `json:"eta" mapstructure:"eta" validate:"gt=0,lt=1"`
	InitialWeight float64 `json:"initial_weight" mapstructure:"initial_weight" validate:"gt=0"`

	IterationNum int     `json:"iteration_num" mapstructure:"iteration_num" validate:"gte=1"`
	Epsilon      float64 `json:"epsilon" mapstructure:"epsilon" validate:"gt=0,lte=1"`
	SegmentNum   int     `json:"segment_num" mapstructure:"segment_num" validate:"gte=1"`

	Theta int `json:"theta" mapstructure:"theta" validate:"gte=1"`
	Tau   int `json:"tau" mapstructure:"tau" validate:"gte=1"`

	RemoveUpperBound int `json:"remove_upper_bound" mapstructure:"remove_upper_bound" validate:"gte=1"`
	RemoveLowerBound int `json:"remove_lower_bound" mapstructure:"remove_lower_bound" validate:"gte=1"`
}

func Default() *Parameters {
	return &Parameters{
		Alpha: 1.0,
		Beta:  1e-6,
		Gama:  1e9,

		ShawParam1: 9.0,
		ShawParam2: 3.0,
		ShawParam3: 3.0,
		ShawParam4: 5.0,

		P:      6,
		PWorst: 3,

		W:          0.05,
		AnnealingP: 0.5,
		C:          0.99975,

		R:          0.1,
		RewardAdds: []int{10, 6, 3},

		Eta:           0.025,
		InitialWeight: 1.0,

		IterationNum: 25000,
		Epsilon:      0.4,
		SegmentNum:   50,

		Theta: 25000,
		Tau:   2000,

		RemoveUpperBound: 100,
		RemoveLowerBound: 4,
	}
}

// Validate range-checks every field and the cross-field removal bounds.
// Any violation is an ErrConfig and fatal to the run.
func (p *Parameters) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return util.WrapErrorf(err, util.ErrConfig, "parameter out of range")
	}
	if p.RemoveUpperBound < p.RemoveLowerBound {
		return util.WrapErrorf(nil, util.ErrConfig,
			"remove_upper_bound %d < remove_lower_bound %d", p.RemoveUpperBound, p.RemoveLowerBound)
	}
	return nil
}

// FromViper overlays config-file/env values onto the defaults.
func FromViper() (*Parameters, error) {
	p := Default()
	if err := viper.UnmarshalKey("solver", p); err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfig, "cannot decode solver parameters")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parameters) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfig, "cannot read parameter file %s", path)
	}
	p := Default()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfig, "cannot parse parameter file %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parameters) Copy() *Parameters {
	cp := *p
	cp.RewardAdds = append([]int(nil), p.RewardAdds...)
	return &cp
}

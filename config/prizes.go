package config

import (
	"fmt"

	"jackpot/domain/entities"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// PrizeConfig is the on-disk prize and commission rate configuration.
// All percentages, floors, caps and bonuses live here, never in code.
type PrizeConfig struct {
	Prizes      entities.PrizeTable      `toml:"prizes"`
	Commissions entities.CommissionRates `toml:"commissions"`
}

var validate = validator.New()

// LoadPrizeConfig reads and validates the TOML prize configuration
func LoadPrizeConfig(path string) (*PrizeConfig, error) {
	var cfg PrizeConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode prize config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prize config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the decoded configuration against both the tag rules and
// the structural rules the tags cannot express
func (c *PrizeConfig) Validate() error {
	if err := c.Prizes.Validate(); err != nil {
		return err
	}

	for place, roles := range c.Prizes {
		for role, share := range roles {
			if err := validate.Struct(share); err != nil {
				return fmt.Errorf("prize share %s/%s: %w", place, role, err)
			}
		}
	}

	if err := validate.Struct(c.Commissions); err != nil {
		return fmt.Errorf("commission rates: %w", err)
	}
	return nil
}

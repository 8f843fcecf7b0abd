package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/safetrix/internal/config"
)

// sizeFlag is a pflag.Value accepting config.ParseSize syntax (64K, 1.5M).
type sizeFlag struct {
	val *int64
}

var _ pflag.Value = (*sizeFlag)(nil)

func newSizeFlag(p *int64, def int64) *sizeFlag {
	*p = def
	return &sizeFlag{val: p}
}

func (f *sizeFlag) String() string {
	if f.val == nil || *f.val == 0 {
		return ""
	}
	return strconv.FormatInt(*f.val, 10)
}

func (f *sizeFlag) Set(s string) error {
	n, err := config.ParseSize(s)
	if err != nil {
		return err
	}
	*f.val = n
	return nil
}

func (*sizeFlag) Type() string { return "size" }

// sizeOption returns the flag value when set on the command line, else the
// config value when present, else the flag default.
func sizeOption(cmd *cobra.Command, name string, flagVal int64, cfgVal *string) (int64, error) {
	if cmd.Flags().Changed(name) || cfgVal == nil {
		return flagVal, nil
	}
	return config.ParseSize(*cfgVal)
}

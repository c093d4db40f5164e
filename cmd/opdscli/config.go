package main

import (
	"fmt"

	"github.com/fwojciec/opdscli"
)

// Run executes the config get command.
func (c *ConfigGetCmd) Run(deps *Dependencies) error {
	value, err := deps.Settings.Setting(deps.Ctx, c.Key)
	if opdscli.ErrorCode(err) == opdscli.ENOTFOUND && c.Key == opdscli.SettingDefaultFormat {
		value, err = opdscli.DefaultFormat, nil
	}
	if err != nil {
		return deps.fail(err)
	}
	fmt.Fprintln(deps.Stdout, value)
	return nil
}

// Run executes the config set command.
func (c *ConfigSetCmd) Run(deps *Dependencies) error {
	if c.Key == opdscli.SettingDefaultFormat {
		if _, ok := opdscli.MediaTypeForFormat(c.Value); !ok {
			fmt.Fprintf(deps.Stderr, "warning: %q is not a known format; it will be matched against link types verbatim\n", c.Value)
		}
	}
	if err := deps.Settings.SetSetting(deps.Ctx, c.Key, c.Value); err != nil {
		return deps.fail(err)
	}
	deps.infof("Set %s = %s\n", c.Key, c.Value)
	return nil
}

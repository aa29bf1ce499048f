package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	// Config shapes the program frame written around generated code.
	Config struct {
		Assembly string `yaml:"assembly"`
		MaxStack int    `yaml:"maxstack"`
		Ext      string `yaml:"ext"`
	}
)

func Default() Config {
	return Config{
		Assembly: "mini_lang",
		MaxStack: 128,
		Ext:      ".il",
	}
}

// Load reads a yaml file over Default. Empty name returns Default.
func Load(name string) (c Config, err error) {
	c = Default()

	if name == "" {
		return c, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return c, errors.Wrap(err, "read config")
	}

	return Parse(data)
}

func Parse(data []byte) (c Config, err error) {
	c = Default()

	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)

	err = d.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return c, errors.Wrap(err, "decode config")
	}

	err = c.Validate()
	if err != nil {
		return c, err
	}

	return c, nil
}

func (c Config) Validate() error {
	if c.Assembly == "" {
		return errors.New("empty assembly name")
	}

	if c.MaxStack <= 0 {
		return errors.New("bad maxstack: %d", c.MaxStack)
	}

	return nil
}

// Package flagx binds cobra flags to tagged option structs.
//
//	type RunFlags struct {
//	    Timeout time.Duration `flag:"timeout,t" usage:"give up after" default:"30s"`
//	    Only    []string      `flag:"only" usage:"services to start"`
//	}
//
//	var opts RunFlags
//	_ = flagx.BindFlags(cmd, &opts)  // in the command constructor
//	_ = flagx.ParseFlags(cmd, &opts) // in RunE
//
// Supported field types: string, int, bool, time.Duration, []string.
package flagx

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

type field struct {
	value   reflect.Value
	typ     reflect.StructField
	name    string
	short   string
	usage   string
	def     string
	require bool
}

func fields(target interface{}) ([]field, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a pointer to struct, got %T", target)
	}
	v = v.Elem()
	t := v.Type()

	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("flag")
		if tag == "" || !v.Field(i).CanSet() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, field{
			value:   v.Field(i),
			typ:     sf,
			name:    name,
			short:   short,
			usage:   sf.Tag.Get("usage"),
			def:     sf.Tag.Get("default"),
			require: sf.Tag.Get("required") == "true",
		})
	}
	return out, nil
}

// BindFlags registers one flag per tagged field on cmd.Flags()
func BindFlags(cmd *cobra.Command, target interface{}) error {
	fs, err := bind(cmd.Flags(), target)
	if err != nil {
		return err
	}
	for _, f := range fs {
		if f.require {
			if err := cmd.MarkFlagRequired(f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// BindPersistentFlags is BindFlags for flags inherited by subcommands
func BindPersistentFlags(cmd *cobra.Command, target interface{}) error {
	fs, err := bind(cmd.PersistentFlags(), target)
	if err != nil {
		return err
	}
	for _, f := range fs {
		if f.require {
			if err := cmd.MarkPersistentFlagRequired(f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

func bind(flags *pflag.FlagSet, target interface{}) ([]field, error) {
	fs, err := fields(target)
	if err != nil {
		return nil, err
	}

	for _, f := range fs {
		switch {
		case f.typ.Type == durationType:
			def, err := cast.ToDurationE(orZero(f.def, "0s"))
			if err != nil {
				return nil, fmt.Errorf("flag %s: bad default %q: %w", f.name, f.def, err)
			}
			flags.DurationP(f.name, f.short, def, f.usage)
		case f.typ.Type.Kind() == reflect.String:
			flags.StringP(f.name, f.short, f.def, f.usage)
		case f.typ.Type.Kind() == reflect.Int:
			flags.IntP(f.name, f.short, cast.ToInt(f.def), f.usage)
		case f.typ.Type.Kind() == reflect.Bool:
			flags.BoolP(f.name, f.short, cast.ToBool(f.def), f.usage)
		case f.typ.Type.Kind() == reflect.Slice && f.typ.Type.Elem().Kind() == reflect.String:
			var def []string
			if f.def != "" {
				def = strings.Split(f.def, ",")
			}
			flags.StringSliceP(f.name, f.short, def, f.usage)
		default:
			return nil, fmt.Errorf("flag %s: unsupported field type %s", f.name, f.typ.Type)
		}
	}
	return fs, nil
}

// ParseFlags copies the parsed flag values into target
func ParseFlags(cmd *cobra.Command, target interface{}) error {
	fs, err := fields(target)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for _, f := range fs {
		if flags.Lookup(f.name) == nil {
			return fmt.Errorf("flag %s is not defined", f.name)
		}

		switch {
		case f.typ.Type == durationType:
			d, err := flags.GetDuration(f.name)
			if err != nil {
				return fmt.Errorf("parse field %s: %w", f.typ.Name, err)
			}
			f.value.SetInt(int64(d))
		case f.typ.Type.Kind() == reflect.String:
			s, err := flags.GetString(f.name)
			if err != nil {
				return fmt.Errorf("parse field %s: %w", f.typ.Name, err)
			}
			f.value.SetString(s)
		case f.typ.Type.Kind() == reflect.Int:
			n, err := flags.GetInt(f.name)
			if err != nil {
				return fmt.Errorf("parse field %s: %w", f.typ.Name, err)
			}
			f.value.SetInt(int64(n))
		case f.typ.Type.Kind() == reflect.Bool:
			b, err := flags.GetBool(f.name)
			if err != nil {
				return fmt.Errorf("parse field %s: %w", f.typ.Name, err)
			}
			f.value.SetBool(b)
		case f.typ.Type.Kind() == reflect.Slice && f.typ.Type.Elem().Kind() == reflect.String:
			ss, err := flags.GetStringSlice(f.name)
			if err != nil {
				return fmt.Errorf("parse field %s: %w", f.typ.Name, err)
			}
			f.value.Set(reflect.ValueOf(ss))
		default:
			return fmt.Errorf("parse field %s: unsupported type %s", f.typ.Name, f.typ.Type)
		}
	}
	return nil
}

func orZero(s, zero string) string {
	if s == "" {
		return zero
	}
	return s
}

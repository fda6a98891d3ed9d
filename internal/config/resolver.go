// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Resolver looks up command options. A flag set on the command line wins,
// then HUMIO_<FLAG> from the environment, then the config file value given
// as default, then the flag's own default.
type Resolver struct {
	v *viper.Viper
}

// NewResolver binds every flag in flags. The keys of defaults are flag
// names.
func NewResolver(flags *pflag.FlagSet, defaults map[string]any) (*Resolver, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	return &Resolver{v: v}, nil
}

// String returns the resolved value of a string flag.
func (r *Resolver) String(key string) string {
	return r.v.GetString(key)
}

// Bool returns the resolved value of a boolean flag.
func (r *Resolver) Bool(key string) bool {
	return r.v.GetBool(key)
}

// Int returns the resolved value of an integer flag.
func (r *Resolver) Int(key string) int {
	return r.v.GetInt(key)
}

// StringSlice returns the resolved value of a repeatable flag. Values from
// the environment are split on commas.
func (r *Resolver) StringSlice(key string) []string {
	switch value := r.v.Get(key).(type) {
	case string:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return r.v.GetStringSlice(key)
	}
}

// IsSet reports whether key has a value from any source other than the
// flag's own default.
func (r *Resolver) IsSet(key string) bool {
	return r.v.IsSet(key)
}

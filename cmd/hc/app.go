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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/transform"

	"github.com/sirseerhq/humiocli/internal/config"
	"github.com/sirseerhq/humiocli/internal/encoding"
	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
	"github.com/sirseerhq/humiocli/internal/humio"
	"github.com/sirseerhq/humiocli/internal/logging"
)

// app carries what every command needs. The configuration and logger are
// set up by the root command before any subcommand runs.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer

	configPath string
	envFile    string

	newClient func(humio.Options) humio.Client
	now       func() time.Time
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		cfg:       config.DefaultConfig(),
		logger:    logging.Discard(),
		newClient: func(opts humio.Options) humio.Client { return humio.NewClient(opts) },
		now:       time.Now,
	}
}

// setup sources the env file, loads the config file and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	r, err := config.NewResolver(cmd.Root().PersistentFlags(), map[string]any{
		"log-level":  cfg.Logging.Level,
		"log-format": cfg.Logging.Format,
		"log-file":   cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	cfg.Logging.Level = r.String("log-level")
	cfg.Logging.Format = r.String("log-format")
	cfg.Logging.File = r.String("log-file")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(a.stderr, logging.FromConfig(cfg.Logging))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closer = closer
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// resolver layers flags and HUMIO_* variables over defaults taken from the
// config file.
func (a *app) resolver(cmd *cobra.Command, defaults map[string]any) (*config.Resolver, error) {
	if cmd.Flags().Lookup("base-url") != nil {
		defaults["base-url"] = a.cfg.Humio.BaseURL
	}
	return config.NewResolver(cmd.Flags(), defaults)
}

func addConnectionFlags(cmd *cobra.Command, tokenFlag, tokenHelp string) {
	cmd.Flags().String("base-url", "", "Humio base URL to connect to, for example https://cloud.humio.com")
	cmd.Flags().String(tokenFlag, "", tokenHelp)
}

// connect builds a client from the connection flags. tokenFlag names the
// flag holding the token; it is required unless optional is set.
func (a *app) connect(r *config.Resolver, tokenFlag string, optional bool, timeout time.Duration) (humio.Client, error) {
	baseURL := r.String("base-url")
	if baseURL == "" {
		return nil, fmt.Errorf("missing --base-url or %s", envName("base-url"))
	}
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}

	token := r.String(tokenFlag)
	if token == "" && !optional {
		return nil, fmt.Errorf("missing --%s or %s", tokenFlag, envName(tokenFlag))
	}

	opts := humio.Options{BaseURL: baseURL, Timeout: timeout}
	if tokenFlag == "ingest-token" {
		opts.IngestToken = token
	} else {
		opts.Token = token
	}
	return a.newClient(opts), nil
}

func envName(flag string) string {
	return config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// noRepositoriesError explains that patterns matched nothing, with fuzzy
// suggestions from candidates.
func noRepositoriesError(patterns []string, candidates []humio.Repository) error {
	names := humio.Names(candidates)
	seen := map[string]bool{}
	var hints []string
	for _, p := range patterns {
		for _, s := range humio.Suggest(p, names, 3) {
			if !seen[s] {
				seen[s] = true
				hints = append(hints, s)
			}
		}
	}

	if len(hints) > 0 {
		return fmt.Errorf("%w for %s, did you mean: %s",
			humioerrors.ErrNoRepositories, strings.Join(patterns, ", "), strings.Join(hints, ", "))
	}
	return fmt.Errorf("%w for %s", humioerrors.ErrNoRepositories, strings.Join(patterns, ", "))
}

// detectEncoding returns label when set, otherwise the detected encoding of
// the file at path. A detection with low confidence is logged.
func (a *app) detectEncoding(path, label string) (string, float64, error) {
	if label != "" {
		return label, 1, nil
	}

	d, err := encoding.Detect(path)
	if err != nil {
		return "", 0, err
	}
	if d.Confidence < encoding.LowConfidence {
		a.logger.Warn("Detected encoding has low confidence",
			"file", path, "encoding", d.Encoding, "confidence", d.Confidence)
	}
	if d.Encoding == "" {
		return "", d.Confidence, fmt.Errorf("%s: %w", path, humioerrors.ErrUnknownEncoding)
	}
	return d.Encoding, d.Confidence, nil
}

// openInput opens a file, or stdin for "" and "-", decoded to UTF-8. Files
// without a label are detected; stdin is assumed to be UTF-8.
func (a *app) openInput(path, label string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		if label == "" {
			return io.NopCloser(a.stdin), nil
		}
		enc, err := encoding.Lookup(label)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(transform.NewReader(a.stdin, enc.NewDecoder())), nil
	}

	label, _, err := a.detectEncoding(path, label)
	if err != nil {
		return nil, err
	}
	return encoding.Open(path, label)
}

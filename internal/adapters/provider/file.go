package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/pkg/logger"
)

// FileProvider reads games from a YAML document of the form
//
//	games:
//	  - id: 2017-01-KC-NE
//	    season: 2017
//	    week: 1
//	    kind: REG
//	    winner: KC
//	    loser: NE
//	    winner_score: 42
//	    loser_score: 27
//
// The file is read on every call so edits are picked up without a restart.
type FileProvider struct {
	path string
	log  logger.Logger
}

// NewFileProvider creates a provider over the YAML file at path.
func NewFileProvider(path string, opts ...Option) *FileProvider {
	o := newOptions(opts)
	return &FileProvider{path: path, log: o.logger}
}

// Games implements Provider.
func (p *FileProvider) Games(ctx context.Context, sel model.Selection) (out []model.GameOutcome, err error) {
	const op = "provider.file"
	defer observe("file", time.Now(), &err)
	if err = validate(op, &sel); err != nil {
		return nil, err
	}

	raw, err := file.Provider(p.path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s: %w", op, ErrFetch, p.path, err)
	}
	k := koanf.New(".")
	if err = k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%s: %w: %s: %w", op, ErrDecode, p.path, err)
	}
	var games []model.GameOutcome
	if err = k.UnmarshalWithConf("games", &games, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%s: %w: %s: %w", op, ErrDecode, p.path, err)
	}

	out = collect(ctx, p.log, games, sel)
	p.log.Debug(ctx, "loaded games from file",
		logger.String("path", p.path),
		logger.Int("read", len(games)),
		logger.Int("selected", len(out)),
	)
	return out, nil
}

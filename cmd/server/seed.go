package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/repo"
)

var errNoSecret = errors.New("--print-tokens needs JWT_SECRET")

// testReaders are the development accounts. Ids derive from the username so
// reseeding keeps issued tokens valid.
var testReaders = []domain.Reader{
	{Username: "joao.silva", FullName: "João Silva"},
	{Username: "maria.santos", FullName: "Maria Santos"},
	{Username: "pedro.costa", FullName: "Pedro Costa"},
	{Username: "ana.oliveira", FullName: "Ana Oliveira"},
}

func readerID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("library-community/reader/"+username)).String()
}

func seedAction(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	printTokens := c.Bool("print-tokens")
	if printTokens && cfg.Auth.JWTSecret == "" {
		return errNoSecret
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	var out io.Writer
	if printTokens {
		out = os.Stdout
	}
	return seedReaders(ctx, db, []byte(cfg.Auth.JWTSecret), out)
}

// seedReaders upserts testReaders and, when out is set, writes one
// "username<TAB>token" line per reader.
func seedReaders(ctx context.Context, db *gorm.DB, secret []byte, out io.Writer) error {
	for _, tr := range testReaders {
		r := tr
		r.ID = readerID(r.Username)
		r.Role = repo.MemberRole
		r.IsActive = true
		if err := repo.UpsertReader(ctx, db, &r); err != nil {
			return fmt.Errorf("seed %s: %w", r.Username, err)
		}
		log.Info().Str("username", r.Username).Str("id", r.ID).Msg("reader seeded")

		if out == nil {
			continue
		}
		tok, err := middleware.SignReaderToken(middleware.ReaderClaims{
			ID:       middleware.ClaimID(r.ID),
			Username: r.Username,
			FullName: r.FullName,
			Role:     r.Role,
		}, secret)
		if err != nil {
			return fmt.Errorf("sign %s: %w", r.Username, err)
		}
		fmt.Fprintf(out, "%s\t%s\n", r.Username, tok)
	}
	return nil
}

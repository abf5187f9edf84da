package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/internal/policy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDataDir is where LoadCSV looks for the fixture files.
const DefaultDataDir = "static/data"

// csvNamespace turns the integer keys of the fixture files into stable UUIDs,
// so loading the same files twice addresses the same rows.
var csvNamespace = uuid.MustParse("6f1c2a4e-3b9d-5e7f-8a10-2c4d6e8f0a1b")

func legacyID(kind, raw string) uuid.UUID {
	return uuid.NewSHA1(csvNamespace, []byte(kind+":"+strings.TrimSpace(raw)))
}

type csvLoader struct {
	repo *repository.Repository
	dir  string
	now  time.Time
	log  *zap.Logger
}

// LoadCSV imports the fixture files from dir in dependency order.
// Rows that already exist are skipped.
func LoadCSV(ctx context.Context, repo *repository.Repository, dir string, log *zap.Logger) error {
	l := &csvLoader{
		repo: repo,
		dir:  dir,
		now:  time.Now(),
		log:  log.With(zap.String("command", "loadcsv")),
	}

	steps := []struct {
		file string
		load func(ctx context.Context, row []string) error
	}{
		{"users.csv", l.user},
		{"category.csv", l.category},
		{"genre.csv", l.genre},
		{"titles.csv", l.title},
		{"genre_title.csv", l.titleGenre},
		{"review.csv", l.review},
		{"comments.csv", l.comment},
	}

	for _, step := range steps {
		n, err := l.loadFile(ctx, step.file, step.load)
		if err != nil {
			return err
		}
		l.log.Info("CSV file loaded", zap.String("file", step.file), zap.Int("rows", n))
	}

	return nil
}

func (l *csvLoader) loadFile(ctx context.Context, name string, load func(context.Context, []string) error) (int, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}

	loaded := 0
	for i, row := range rows {
		err := load(ctx, row)
		if errors.Is(err, repository.ErrDuplicate) {
			l.log.Debug("Row already present", zap.String("file", name), zap.Int("line", i+2))
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("%s line %d: %w", name, i+2, err)
		}
		loaded++
	}
	return loaded, nil
}

// readRows returns every record after the header line.
func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func need(row []string, n int) error {
	if len(row) < n {
		return fmt.Errorf("expected %d columns, got %d", n, len(row))
	}
	return nil
}

// users.csv: id,username,email,role,bio,first_name,last_name
func parseUser(row []string, now time.Time) (*entity.User, error) {
	if err := need(row, 7); err != nil {
		return nil, err
	}

	role, err := policy.ParseRole(row[3])
	if err != nil {
		return nil, err
	}

	return &entity.User{
		Base:        entity.Base{ID: legacyID("user", row[0]), CreatedAt: now, UpdatedAt: now},
		Username:    row[1],
		Email:       row[2],
		Role:        role,
		Bio:         row[4],
		FirstName:   row[5],
		LastName:    row[6],
		IsConfirmed: true,
	}, nil
}

// category.csv and genre.csv: id,name,slug
func parseTaxonomy(kind string, row []string, now time.Time) (*entity.Taxonomy, error) {
	if err := need(row, 3); err != nil {
		return nil, err
	}
	return &entity.Taxonomy{
		BaseSimple: entity.BaseSimple{ID: legacyID(kind, row[0]), CreatedAt: now},
		Name:       row[1],
		Slug:       row[2],
	}, nil
}

// titles.csv: id,name,year,category
func parseTitle(row []string, now time.Time) (*entity.Title, error) {
	if err := need(row, 4); err != nil {
		return nil, err
	}

	year, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return nil, fmt.Errorf("year %q: %w", row[2], err)
	}

	title := &entity.Title{
		Base: entity.Base{ID: legacyID("title", row[0]), CreatedAt: now, UpdatedAt: now},
		Name: row[1],
		Year: year,
	}
	if strings.TrimSpace(row[3]) != "" {
		categoryID := legacyID("category", row[3])
		title.CategoryID = &categoryID
	}
	return title, nil
}

// genre_title.csv: id,title_id,genre_id
func parseTitleGenre(row []string) (*entity.TitleGenre, error) {
	if err := need(row, 3); err != nil {
		return nil, err
	}
	return &entity.TitleGenre{
		TitleID: legacyID("title", row[1]),
		GenreID: legacyID("genre", row[2]),
	}, nil
}

// review.csv: id,title_id,text,author,score,pub_date
func parseReview(row []string) (*entity.Review, error) {
	if err := need(row, 6); err != nil {
		return nil, err
	}

	score, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return nil, fmt.Errorf("score %q: %w", row[4], err)
	}

	pubDate, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[5]))
	if err != nil {
		return nil, fmt.Errorf("pub_date %q: %w", row[5], err)
	}

	return &entity.Review{
		ID: legacyID("review", row[0]),
		Publication: entity.Publication{
			AuthorID: legacyID("user", row[3]),
			Text:     row[2],
			PubDate:  pubDate,
		},
		TitleID: legacyID("title", row[1]),
		Score:   score,
	}, nil
}

// comments.csv: id,review_id,text,author,pub_date
func parseComment(row []string) (*entity.Comment, error) {
	if err := need(row, 5); err != nil {
		return nil, err
	}

	pubDate, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[4]))
	if err != nil {
		return nil, fmt.Errorf("pub_date %q: %w", row[4], err)
	}

	return &entity.Comment{
		ID: legacyID("comment", row[0]),
		Publication: entity.Publication{
			AuthorID: legacyID("user", row[3]),
			Text:     row[2],
			PubDate:  pubDate,
		},
		ReviewID: legacyID("review", row[1]),
	}, nil
}

func (l *csvLoader) user(ctx context.Context, row []string) error {
	user, err := parseUser(row, l.now)
	if err != nil {
		return err
	}
	return l.repo.User.Create(ctx, user)
}

func (l *csvLoader) category(ctx context.Context, row []string) error {
	tag, err := parseTaxonomy("category", row, l.now)
	if err != nil {
		return err
	}
	return l.repo.Category.Create(ctx, tag)
}

func (l *csvLoader) genre(ctx context.Context, row []string) error {
	tag, err := parseTaxonomy("genre", row, l.now)
	if err != nil {
		return err
	}
	return l.repo.Genre.Create(ctx, tag)
}

func (l *csvLoader) title(ctx context.Context, row []string) error {
	title, err := parseTitle(row, l.now)
	if err != nil {
		return err
	}
	return l.repo.Title.Create(ctx, title)
}

func (l *csvLoader) titleGenre(ctx context.Context, row []string) error {
	link, err := parseTitleGenre(row)
	if err != nil {
		return err
	}
	return l.repo.TitleGenre.Create(ctx, link)
}

func (l *csvLoader) review(ctx context.Context, row []string) error {
	review, err := parseReview(row)
	if err != nil {
		return err
	}
	return l.repo.Review.Create(ctx, review)
}

func (l *csvLoader) comment(ctx context.Context, row []string) error {
	comment, err := parseComment(row)
	if err != nil {
		return err
	}
	return l.repo.Comment.Create(ctx, comment)
}

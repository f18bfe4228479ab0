package market

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tmscout-backend/lib/scrapers/pmanager"
)

// Store persists entries across runs. The players table is merge-only,
// each run can only add or overwrite rows. The market table mirrors the
// latest run exactly.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertPlayers merges the descriptive attributes of each entry into
// the players table. A row is overwritten wholesale when its id is
// already present, rows for unseen ids are untouched.
func (s *Store) UpsertPlayers(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		skills, err := marshalSkills(entry.Skills)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO players (id, name, position, age, nationality, quality, potential, skills, url, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				position = excluded.position,
				age = excluded.age,
				nationality = excluded.nationality,
				quality = excluded.quality,
				potential = excluded.potential,
				skills = excluded.skills,
				url = excluded.url,
				last_updated = excluded.last_updated
		`,
			NormalizeId(entry.Id), entry.Name, entry.Position, entry.Age,
			entry.Nationality, entry.Quality, entry.Potential,
			skills, entry.Url, entry.LastUpdated.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", entry.Id, err)
		}
	}
	return tx.Commit()
}

// ReplaceMarket swaps the market table for the given run, all in one
// transaction so readers never observe a half-replaced view.
func (s *Store) ReplaceMarket(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM market`); err != nil {
		return fmt.Errorf("failed to clear market: %w", err)
	}
	for _, entry := range entries {
		skills, err := marshalSkills(entry.Skills)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO market (
				id, name, position, age, nationality, quality, potential, skills, url,
				estimated_value, asking_price, bids_count, bids_average, deadline,
				buy_price, value_diff, roi_percent, forecast_sell, last_updated
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			NormalizeId(entry.Id), entry.Name, entry.Position, entry.Age,
			entry.Nationality, entry.Quality, entry.Potential, skills, entry.Url,
			entry.Snapshot.EstimatedValue, entry.Snapshot.AskingPrice,
			entry.Snapshot.BidsCount, entry.Snapshot.BidsAverage,
			entry.Snapshot.DeadlineText,
			entry.Snapshot.BuyPrice, entry.Snapshot.ValueDiff,
			entry.Snapshot.RoiPercent, entry.Snapshot.ForecastSell,
			entry.LastUpdated.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert market entry %s: %w", entry.Id, err)
		}
	}
	return tx.Commit()
}

// Market returns the latest run's entries ordered by forecast profit,
// best first.
func (s *Store) Market(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, age, nationality, quality, potential, skills, url,
			estimated_value, asking_price, bids_count, bids_average, deadline,
			buy_price, value_diff, roi_percent, forecast_sell, last_updated
		FROM market
		ORDER BY forecast_sell DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query market: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var skills string
		var lastUpdated int64
		err := rows.Scan(
			&entry.Id, &entry.Name, &entry.Position, &entry.Age,
			&entry.Nationality, &entry.Quality, &entry.Potential, &skills, &entry.Url,
			&entry.Snapshot.EstimatedValue, &entry.Snapshot.AskingPrice,
			&entry.Snapshot.BidsCount, &entry.Snapshot.BidsAverage,
			&entry.Snapshot.DeadlineText,
			&entry.Snapshot.BuyPrice, &entry.Snapshot.ValueDiff,
			&entry.Snapshot.RoiPercent, &entry.Snapshot.ForecastSell,
			&lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market entry: %w", err)
		}
		if entry.Skills, err = unmarshalSkills(skills); err != nil {
			return nil, err
		}
		entry.LastUpdated = time.Unix(lastUpdated, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Players returns every player ever merged, ordered by id.
func (s *Store) Players(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, age, nationality, quality, potential, skills, url, last_updated
		FROM players
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var skills string
		var lastUpdated int64
		err := rows.Scan(
			&entry.Id, &entry.Name, &entry.Position, &entry.Age,
			&entry.Nationality, &entry.Quality, &entry.Potential, &skills,
			&entry.Url, &lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if entry.Skills, err = unmarshalSkills(skills); err != nil {
			return nil, err
		}
		entry.LastUpdated = time.Unix(lastUpdated, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalSkills(skills map[string]pmanager.SkillValue) (string, error) {
	if skills == nil {
		skills = map[string]pmanager.SkillValue{}
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("failed to marshal skills: %w", err)
	}
	return string(data), nil
}

func unmarshalSkills(data string) (map[string]pmanager.SkillValue, error) {
	skills := map[string]pmanager.SkillValue{}
	if err := json.Unmarshal([]byte(data), &skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	return skills, nil
}

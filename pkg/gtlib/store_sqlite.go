package gtlib

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS schedules (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	type               TEXT NOT NULL,
	start_date         INTEGER,
	time_of_day        INTEGER,
	recurrence_pattern TEXT,
	week_days          TEXT,
	day_of_month       INTEGER,
	month              INTEGER,
	day                INTEGER,
	interval           INTEGER,
	time_unit          TEXT,
	end_date           INTEGER,
	max_executions     INTEGER NOT NULL DEFAULT 0,
	is_active          INTEGER NOT NULL DEFAULT 1,
	created_at         INTEGER NOT NULL,
	last_executed_at   INTEGER,
	next_execution_at  INTEGER,
	execution_count    INTEGER NOT NULL DEFAULT 0,
	metadata           TEXT
);
CREATE TABLE IF NOT EXISTS scheduled_downloads (
	id            TEXT PRIMARY KEY,
	schedule_id   TEXT NOT NULL,
	download_id   TEXT NOT NULL DEFAULT '',
	scheduled_at  INTEGER NOT NULL,
	executed_at   INTEGER,
	is_executed   INTEGER NOT NULL DEFAULT 0,
	is_successful INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	result        TEXT
);
CREATE INDEX IF NOT EXISTS idx_scheduled_downloads_schedule
	ON scheduled_downloads (schedule_id, scheduled_at DESC);
CREATE TABLE IF NOT EXISTS downloads (
	id           TEXT PRIMARY KEY,
	payload      TEXT NOT NULL,
	status       TEXT NOT NULL,
	added_at     INTEGER NOT NULL
);
`

// SqliteStore is the sqlite-backed ScheduleStore and DownloadStore.
// All bookkeeping updates run as single statements, so concurrent user
// edits and execution-service writes serialize at row level.
type SqliteStore struct {
	db *sql.DB
}

// OpenStore opens (and if necessary creates) the client database at path.
func OpenStore(path string) (*SqliteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

// Close closes the underlying database.
func (st *SqliteStore) Close() error {
	return st.db.Close()
}

const scheduleColumns = `id, name, description, type, start_date, time_of_day,
	recurrence_pattern, week_days, day_of_month, month, day, interval, time_unit,
	end_date, max_executions, is_active, created_at, last_executed_at,
	next_execution_at, execution_count, metadata`

// Schedule returns the schedule with the given id.
func (st *SqliteStore) Schedule(id string) (*Schedule, error) {
	row := st.db.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	return s, err
}

// Schedules returns all schedules, newest first.
func (st *SqliteStore) Schedules() ([]*Schedule, error) {
	return st.querySchedules(`SELECT ` + scheduleColumns + ` FROM schedules ORDER BY created_at DESC`)
}

// ActiveSchedules returns all active schedules, newest first.
func (st *SqliteStore) ActiveSchedules() ([]*Schedule, error) {
	return st.querySchedules(`SELECT ` + scheduleColumns + ` FROM schedules WHERE is_active = 1 ORDER BY created_at DESC`)
}

// SchedulesToExecute returns active schedules whose cached next-execution
// time is unset or at most upper, ascending by that time.
func (st *SqliteStore) SchedulesToExecute(lower, upper int64) ([]*Schedule, error) {
	_ = lower // the cached value may be stale; only the upper bound prunes
	return st.querySchedules(`
		SELECT `+scheduleColumns+` FROM schedules
		WHERE is_active = 1
		AND (next_execution_at IS NULL OR next_execution_at <= ?)
		ORDER BY next_execution_at ASC`, upper)
}

func (st *SqliteStore) querySchedules(query string, args ...any) ([]*Schedule, error) {
	rows, err := st.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()
	var schedules []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// SaveSchedule inserts or replaces a schedule definition.
func (st *SqliteStore) SaveSchedule(s *Schedule) error {
	f := encodeRecurrence(s.Recurrence)
	var weekDays sql.NullString
	if len(f.WeekDays) > 0 {
		names := make([]string, len(f.WeekDays))
		for i, d := range f.WeekDays {
			names[i] = d.String()
		}
		weekDays = sql.NullString{String: strings.Join(names, ","), Valid: true}
	}
	var meta sql.NullString
	if len(s.Metadata) > 0 {
		b, err := json.Marshal(s.Metadata)
		if err != nil {
			return fmt.Errorf("encode schedule metadata: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}
	_, err := st.db.Exec(`
		INSERT OR REPLACE INTO schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Id, s.Name, s.Description, string(f.Type),
		nullEpoch(time.Unix(f.StartDate, 0), f.StartDate != 0),
		nullInt(int64(f.TimeOfDay), f.TimeOfDay >= 0),
		nullStr(string(f.Pattern)), weekDays,
		nullInt(int64(f.DayOfMonth), f.DayOfMonth != 0),
		nullInt(int64(f.Month), f.Month != 0),
		nullInt(int64(f.Day), f.Day != 0),
		nullInt(int64(f.Interval), f.Interval != 0),
		nullStr(string(f.TimeUnit)),
		nullEpoch(s.EndDate, !s.EndDate.IsZero()),
		s.MaxExecutions, boolInt(s.IsActive), s.CreatedAt.Unix(),
		nullEpoch(s.LastExecutedAt, !s.LastExecutedAt.IsZero()),
		nullEpoch(s.NextExecutionAt, !s.NextExecutionAt.IsZero()),
		s.ExecutionCount, meta,
	)
	if err != nil {
		return fmt.Errorf("save schedule %s: %w", s.Id, err)
	}
	return nil
}

// DeleteSchedule removes a schedule and its execution records.
func (st *SqliteStore) DeleteSchedule(id string) error {
	res, err := st.db.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScheduleNotFound
	}
	_, err = st.db.Exec(`DELETE FROM scheduled_downloads WHERE schedule_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s records: %w", id, err)
	}
	return nil
}

// SetActive toggles the user enable flag.
func (st *SqliteStore) SetActive(id string, active bool) error {
	res, err := st.db.Exec(`UPDATE schedules SET is_active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("toggle schedule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// SetNextExecution refreshes the cached next-execution time.
func (st *SqliteStore) SetNextExecution(id string, at time.Time) error {
	_, err := st.db.Exec(`UPDATE schedules SET next_execution_at = ? WHERE id = ?`,
		nullEpoch(at, !at.IsZero()), id)
	if err != nil {
		return fmt.Errorf("cache next execution for %s: %w", id, err)
	}
	return nil
}

// MarkExecuted atomically advances the schedule's bookkeeping.
func (st *SqliteStore) MarkExecuted(id string, executedAt time.Time) error {
	res, err := st.db.Exec(`
		UPDATE schedules
		SET last_executed_at = ?,
		    execution_count = execution_count + 1,
		    next_execution_at = NULL
		WHERE id = ?`, executedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("mark schedule %s executed: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// RecordExecution inserts or replaces an execution record.
func (st *SqliteStore) RecordExecution(rec *ScheduledDownload) error {
	var result sql.NullString
	if len(rec.Result) > 0 {
		b, err := json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("encode record result: %w", err)
		}
		result = sql.NullString{String: string(b), Valid: true}
	}
	_, err := st.db.Exec(`
		INSERT OR REPLACE INTO scheduled_downloads
		(id, schedule_id, download_id, scheduled_at, executed_at, is_executed, is_successful, error_message, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Id, rec.ScheduleId, rec.DownloadId, rec.ScheduledAt.Unix(),
		nullEpoch(rec.ExecutedAt, !rec.ExecutedAt.IsZero()),
		boolInt(rec.IsExecuted), boolInt(rec.IsSuccessful),
		nullStr(rec.ErrorMessage), result,
	)
	if err != nil {
		return fmt.Errorf("record execution %s: %w", rec.Id, err)
	}
	return nil
}

// Records returns a schedule's execution records, newest first.
func (st *SqliteStore) Records(scheduleId string) ([]*ScheduledDownload, error) {
	rows, err := st.db.Query(`
		SELECT id, schedule_id, download_id, scheduled_at, executed_at,
		       is_executed, is_successful, error_message, result
		FROM scheduled_downloads WHERE schedule_id = ?
		ORDER BY scheduled_at DESC`, scheduleId)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	var records []*ScheduledDownload
	for rows.Next() {
		var (
			rec        ScheduledDownload
			scheduled  int64
			executed   sql.NullInt64
			isExec     int
			isOk       int
			errMsg     sql.NullString
			result     sql.NullString
		)
		if err := rows.Scan(&rec.Id, &rec.ScheduleId, &rec.DownloadId, &scheduled,
			&executed, &isExec, &isOk, &errMsg, &result); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.ScheduledAt = time.Unix(scheduled, 0)
		if executed.Valid {
			rec.ExecutedAt = time.Unix(executed.Int64, 0)
		}
		rec.IsExecuted = isExec != 0
		rec.IsSuccessful = isOk != 0
		rec.ErrorMessage = errMsg.String
		if result.Valid {
			if err := json.Unmarshal([]byte(result.String), &rec.Result); err != nil {
				return nil, fmt.Errorf("decode record result: %w", err)
			}
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteOldRecords deletes executed records finished before the cutoff.
func (st *SqliteStore) DeleteOldRecords(olderThan time.Time) (int64, error) {
	res, err := st.db.Exec(`
		DELETE FROM scheduled_downloads
		WHERE is_executed = 1 AND executed_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete old records: %w", err)
	}
	return res.RowsAffected()
}

// ExecutionStats aggregates schedule and execution counts.
func (st *SqliteStore) ExecutionStats() (*ExecutionStats, error) {
	var stats ExecutionStats
	err := st.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM schedules),
			(SELECT COUNT(*) FROM schedules WHERE is_active = 1),
			(SELECT COUNT(*) FROM scheduled_downloads),
			(SELECT COUNT(*) FROM scheduled_downloads WHERE is_successful = 1)`,
	).Scan(&stats.TotalSchedules, &stats.ActiveSchedules,
		&stats.TotalExecutions, &stats.SuccessfulExecutions)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &stats, nil
}

// Download returns the cached job with the given id.
func (st *SqliteStore) Download(id string) (*Download, error) {
	var payload string
	err := st.db.QueryRow(`SELECT payload FROM downloads WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrDownloadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query download %s: %w", id, err)
	}
	var d Download
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("decode download %s: %w", id, err)
	}
	return &d, nil
}

// Downloads returns all cached jobs, newest first.
func (st *SqliteStore) Downloads() ([]*Download, error) {
	rows, err := st.db.Query(`SELECT payload FROM downloads ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()
	var downloads []*Download
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		var d Download
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, fmt.Errorf("decode download: %w", err)
		}
		downloads = append(downloads, &d)
	}
	return downloads, rows.Err()
}

// SaveDownload inserts or replaces a cached job.
func (st *SqliteStore) SaveDownload(d *Download) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode download %s: %w", d.Id, err)
	}
	_, err = st.db.Exec(`
		INSERT OR REPLACE INTO downloads (id, payload, status, added_at)
		VALUES (?, ?, ?, ?)`,
		d.Id, string(b), string(d.Status), d.AddedAt.Unix())
	if err != nil {
		return fmt.Errorf("save download %s: %w", d.Id, err)
	}
	return nil
}

// DeleteDownload drops a job from the cache.
func (st *SqliteStore) DeleteDownload(id string) error {
	res, err := st.db.Exec(`DELETE FROM downloads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete download %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDownloadNotFound
	}
	return nil
}

// DeleteFinishedDownloads drops all terminal jobs from the cache.
func (st *SqliteStore) DeleteFinishedDownloads() (int64, error) {
	res, err := st.db.Exec(`DELETE FROM downloads WHERE status IN (?, ?, ?)`,
		string(StatusCompleted), string(StatusFailed), string(StatusCanceled))
	if err != nil {
		return 0, fmt.Errorf("clear finished downloads: %w", err)
	}
	return res.RowsAffected()
}

// scanner abstracts *sql.Row and *sql.Rows for scanSchedule.
type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (*Schedule, error) {
	var (
		s         Schedule
		typ       string
		startDate sql.NullInt64
		timeOfDay sql.NullInt64
		pattern   sql.NullString
		weekDays  sql.NullString
		dayOfMon  sql.NullInt64
		month     sql.NullInt64
		day       sql.NullInt64
		interval  sql.NullInt64
		timeUnit  sql.NullString
		endDate   sql.NullInt64
		isActive  int
		createdAt int64
		lastExec  sql.NullInt64
		nextExec  sql.NullInt64
		metadata  sql.NullString
	)
	err := row.Scan(&s.Id, &s.Name, &s.Description, &typ, &startDate, &timeOfDay,
		&pattern, &weekDays, &dayOfMon, &month, &day, &interval, &timeUnit,
		&endDate, &s.MaxExecutions, &isActive, &createdAt, &lastExec, &nextExec,
		&s.ExecutionCount, &metadata)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	f := recurrenceFields{
		Type:       ScheduleType(typ),
		Pattern:    RecurrencePattern(pattern.String),
		StartDate:  startDate.Int64,
		TimeOfDay:  -1,
		DayOfMonth: int(dayOfMon.Int64),
		Month:      int(month.Int64),
		Day:        int(day.Int64),
		Interval:   int(interval.Int64),
		TimeUnit:   TimeUnit(timeUnit.String),
	}
	if timeOfDay.Valid {
		f.TimeOfDay = int(timeOfDay.Int64)
	}
	if weekDays.Valid && weekDays.String != "" {
		for _, name := range strings.Split(weekDays.String, ",") {
			if d, ok := ParseWeekday(name); ok {
				f.WeekDays = append(f.WeekDays, d)
			}
		}
	}
	// A row with a broken timing definition loads as a dormant schedule:
	// the calculator yields no occurrence and the selector skips it.
	if rec, err := decodeRecurrence(f); err == nil {
		s.Recurrence = rec
	}
	if endDate.Valid {
		s.EndDate = time.Unix(endDate.Int64, 0)
	}
	s.IsActive = isActive != 0
	s.CreatedAt = time.Unix(createdAt, 0)
	if lastExec.Valid {
		s.LastExecutedAt = time.Unix(lastExec.Int64, 0)
	}
	if nextExec.Valid {
		s.NextExecutionAt = time.Unix(nextExec.Int64, 0)
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &s.Metadata); err != nil {
			return nil, fmt.Errorf("decode schedule %s metadata: %w", s.Id, err)
		}
	}
	return &s, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int64, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: valid}
}

func nullEpoch(t time.Time, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: t.Unix(), Valid: valid}
}

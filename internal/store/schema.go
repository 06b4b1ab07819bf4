package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
    day          TEXT PRIMARY KEY,
    weight_kg    REAL    NOT NULL DEFAULT 0,
    calories     INTEGER NOT NULL DEFAULT 0,
    protein_g    INTEGER NOT NULL DEFAULT 0,
    fat_g        INTEGER NOT NULL DEFAULT 0,
    carbs_g      INTEGER NOT NULL DEFAULT 0,
    workout      TEXT    NOT NULL DEFAULT '',
    done         INTEGER NOT NULL DEFAULT 0,
    steps        INTEGER NOT NULL DEFAULT 0,
    notes        TEXT    NOT NULL DEFAULT '',
    updated_at   TEXT    NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS records (
    day          DATE PRIMARY KEY,
    weight_kg    DOUBLE PRECISION NOT NULL DEFAULT 0,
    calories     INTEGER NOT NULL DEFAULT 0,
    protein_g    INTEGER NOT NULL DEFAULT 0,
    fat_g        INTEGER NOT NULL DEFAULT 0,
    carbs_g      INTEGER NOT NULL DEFAULT 0,
    workout      TEXT    NOT NULL DEFAULT '',
    done         SMALLINT NOT NULL DEFAULT 0,
    steps        INTEGER NOT NULL DEFAULT 0,
    notes        TEXT    NOT NULL DEFAULT '',
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// recordColumns is shared by every SELECT so scans line up with scanRecord.
const recordColumns = `day, weight_kg, calories, protein_g, fat_g, carbs_g, workout, done, steps, notes`

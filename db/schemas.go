package db

var schema = `
CREATE TABLE IF NOT EXISTS transmissions (
	transmission_id UUID PRIMARY KEY,
	company_id VARCHAR(64) NOT NULL,
	event_id VARCHAR(64),
	kind VARCHAR(3) NOT NULL,
	period_date DATE NOT NULL,
	file_name VARCHAR(64) NOT NULL,
	document TEXT NOT NULL,
	content_hash CHAR(64) NOT NULL,
	system_code CHAR(8) NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	progressivo BIGINT NOT NULL,
	intervention_code CHAR(3) NOT NULL DEFAULT 'ORD',
	original_id UUID REFERENCES transmissions (transmission_id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, kind, progressivo)
);
`

package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GAConfig is the snapshot of engine constants a session ran with.
type GAConfig struct {
	PopulationSize   int     `json:"population_size"`
	ChromosomeLength int     `json:"chromosome_length"`
	MaxGenerations   int     `json:"max_generations"`
	CrossoverRate    float64 `json:"crossover_rate"`
	MutationRate     float64 `json:"mutation_rate"`
	TournamentSize   int     `json:"tournament_size"`
}

// RunOutcome is the terminal result of one timed GA run inside a session.
type RunOutcome struct {
	Generations int     `json:"generations"`
	BestFitness int     `json:"best_fitness"`
	ElapsedMS   float64 `json:"elapsed_ms"`
}

// RunRecord is one persisted benchmark session: a sequence of timed GA runs
// for a single language variant. TimingsMS is aligned by index with Outcomes.
type RunRecord struct {
	VersionedRecord
	RunID            string       `json:"run_id"`
	Language         string       `json:"language"`
	LanguageID       string       `json:"language_id"`
	Config           GAConfig     `json:"config"`
	Seed             int64        `json:"seed,omitempty"`
	Outcomes         []RunOutcome `json:"outcomes"`
	TimingsMS        []float64    `json:"timings_ms"`
	BestByGeneration []int        `json:"best_by_generation,omitempty"`
	CreatedAtUTC     string       `json:"created_at_utc"`
	Notes            string       `json:"notes,omitempty"`
}

// LanguageSummary aggregates stored sessions per language variant.
type LanguageSummary struct {
	VersionedRecord
	Language    string  `json:"language"`
	LanguageID  string  `json:"language_id"`
	Sessions    int     `json:"sessions"`
	BestFitness int     `json:"best_fitness"`
	FastestMS   float64 `json:"fastest_ms"`
}

package grammar

// CompiledGrammar is the JSON artifact the grammar compiler emits. The
// syntactic part always holds the LALR(1) tables; the predictive part holds
// the LL(1) table and is omitted when the grammar is not LL(1).
type CompiledGrammar struct {
	Name       string          `json:"name"`
	Syntactic  *SyntacticSpec  `json:"syntactic"`
	Predictive *PredictiveSpec `json:"predictive,omitempty"`
}

type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

type UniqueEntriesTable struct {
	UniqueEntries             *RowDisplacementTable `json:"unique_entries,omitempty"`
	UncompressedUniqueEntries []int                 `json:"uncompressed_unique_entries,omitempty"`
	RowNums                   []int                 `json:"row_nums"`
	OriginalRowCount          int                   `json:"original_row_count"`
	OriginalColCount          int                   `json:"original_col_count"`
	EmptyValue                int                   `json:"empty_value"`
}

// CompressedTable carries a state × symbol table at one of three compression
// levels: dense (UncompressedEntries), unique rows (Entries without an inner
// RowDisplacementTable), or unique rows over a displacement table.
type CompressedTable struct {
	RowCount            int                 `json:"row_count"`
	ColCount            int                 `json:"col_count"`
	Entries             *UniqueEntriesTable `json:"entries,omitempty"`
	UncompressedEntries []int               `json:"uncompressed_entries,omitempty"`
}

type SyntacticSpec struct {
	Action                  *CompressedTable `json:"action"`
	GoTo                    *CompressedTable `json:"goto"`
	StateCount              int              `json:"state_count"`
	InitialState            int              `json:"initial_state"`
	StartProduction         int              `json:"start_production"`
	LHSSymbols              []int            `json:"lhs_symbols"`
	AlternativeSymbolCounts []int            `json:"alternative_symbol_counts"`
	Terminals               []string         `json:"terminals"`
	TerminalCount           int              `json:"terminal_count"`
	NonTerminals            []string         `json:"non_terminals"`
	NonTerminalCount        int              `json:"non_terminal_count"`
	EOFSymbol               int              `json:"eof_symbol"`
	CompressionLevel        int              `json:"compression_level"`
}

type PredictiveSpec struct {
	// Table is a dense non-terminal × terminal matrix of production numbers;
	// 0 marks an empty cell.
	Table            []int `json:"table"`
	TerminalCount    int   `json:"terminal_count"`
	NonTerminalCount int   `json:"non_terminal_count"`
	StartSymbol      int   `json:"start_symbol"`

	// RHSSymbols holds, per production, the symbols the predictive driver
	// pushes: terminals as positive numbers, non-terminals negated.
	RHSSymbols [][]int `json:"rhs_symbols"`
}

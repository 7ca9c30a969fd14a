package layout

// Config holds the tunable layout constants. Zero values are not valid;
// start from DefaultConfig and override fields.
type Config struct {
	// BoardGapX is the horizontal gap between boards in a row.
	BoardGapX float64 `toml:"board_gap_x" json:"boardGapX"`
	// RowGapY is the vertical gap between the bottom of a row and the next one.
	RowGapY float64 `toml:"row_gap_y" json:"rowGapY"`
	// RowMaxWidth is the wrap threshold for a row's span.
	RowMaxWidth float64 `toml:"row_max_width" json:"rowMaxWidth"`
	// InnerGap separates assets inside a board.
	InnerGap float64 `toml:"inner_gap" json:"innerGap"`
	// BoardPadding surrounds the asset grid on every side.
	BoardPadding float64 `toml:"board_padding" json:"boardPadding"`
	// RowOverlap is the minimum normalized vertical overlap for a board to
	// count as part of a row. Membership requires score > RowOverlap.
	RowOverlap float64 `toml:"row_overlap" json:"rowOverlap"`
	// ForcedInclusion is reserved for a stronger row-membership rule and is
	// not consulted by the classifier.
	ForcedInclusion float64 `toml:"forced_inclusion" json:"forcedInclusion"`
	// AnchorRowFuzz is the largest difference in top edges for two boards to
	// be treated as the same row when picking an anchor spatially.
	AnchorRowFuzz float64 `toml:"anchor_row_fuzz" json:"anchorRowFuzz"`
	// MaxColumns caps the asset grid width inside one board.
	MaxColumns int `toml:"max_columns" json:"maxColumns"`
	// MaxCount is the largest number of assets one board may hold.
	MaxCount int `toml:"max_count" json:"maxCount"`
}

const (
	DefaultBoardGapX       = 480.0
	DefaultRowGapY         = 800.0
	DefaultRowMaxWidth     = 15000.0
	DefaultInnerGap        = 32.0
	DefaultBoardPadding    = 188.0
	DefaultRowOverlap      = 0.6
	DefaultForcedInclusion = 0.7
	DefaultAnchorRowFuzz   = 100.0
	DefaultMaxColumns      = 4
	DefaultMaxCount        = 16
)

func DefaultConfig() Config {
	return Config{
		BoardGapX:       DefaultBoardGapX,
		RowGapY:         DefaultRowGapY,
		RowMaxWidth:     DefaultRowMaxWidth,
		InnerGap:        DefaultInnerGap,
		BoardPadding:    DefaultBoardPadding,
		RowOverlap:      DefaultRowOverlap,
		ForcedInclusion: DefaultForcedInclusion,
		AnchorRowFuzz:   DefaultAnchorRowFuzz,
		MaxColumns:      DefaultMaxColumns,
		MaxCount:        DefaultMaxCount,
	}
}

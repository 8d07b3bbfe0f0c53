package contracts

import "context"

// FilerResolver maps a ticker to its filer identifier (Filer Directory)
type FilerResolver interface {
	Resolve(ctx context.Context, ticker string) (FilerID, error)
}

// FactSource returns a filer's facts document (Fact Store Accessor)
type FactSource interface {
	Facts(ctx context.Context, id FilerID) (*FactDocument, error)
}

// PriceSource returns a ticker's daily bars and split events
type PriceSource interface {
	History(ctx context.Context, ticker string) (*PriceHistory, error)
}

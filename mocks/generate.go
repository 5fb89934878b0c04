package mocks

//go:generate mockgen -destination=./mock_pricing.go -package=mocks github.com/quantex-lab/snapex/pkg/pricing Provider
//go:generate mockgen -destination=./mock_factor_source.go -package=mocks github.com/quantex-lab/snapex/internal/factor LocalSource
//go:generate mockgen -destination=./mock_bar_source.go -package=mocks github.com/quantex-lab/snapex/internal/reader BarSource
//go:generate mockgen -destination=./mock_status_source.go -package=mocks github.com/quantex-lab/snapex/internal/universe StatusSource

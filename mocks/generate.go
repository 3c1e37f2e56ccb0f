package mocks

//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rustyeddy/signaltrader/broker Broker
//go:generate mockgen -destination=./mock_bar_source.go -package=mocks github.com/rustyeddy/signaltrader/signals BarSource
//go:generate mockgen -destination=./mock_journal.go -package=mocks github.com/rustyeddy/signaltrader/journal Journal
//go:generate mockgen -destination=./mock_predictor.go -package=mocks github.com/rustyeddy/signaltrader/predict Predictor

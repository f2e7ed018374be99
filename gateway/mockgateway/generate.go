package mockgateway

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mockgateway -destination=gateway_mock.go github.com/jrsteele09/go-session-guard/gateway Gateway

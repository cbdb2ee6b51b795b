// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (storage, dispatcher, router)
//   - auth.go             — аутентификация запросов (Authenticator)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery, request id)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - pipeline_handler.go — обработчики для /pipelines
//   - run_handler.go      — обработчики для runs pipeline
//   - schedule_handler.go — обработчики для /schedules
//   - quota_handler.go    — обработчик /quotas
//   - webhook_handler.go  — приём webhooks интеграций (без аутентификации)
//
// Все маршруты, кроме webhooks, работают от имени аккаунта из
// Authenticator: чужой pipeline неотличим от несуществующего.
package api

// Package cli реализует инструмент командной строки Langsync.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Langsync API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления pipelines, runs, schedules и
// просмотра квот.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Langsync API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок. Идентичность аккаунта передаётся заголовком
// X-Account-Id.
//
//	client := cli.NewClient("http://localhost:8080", "acc-1")
//	pipelines, err := client.ListPipelines()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: langsync pipeline list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - pipeline: list, show, update, enable, disable, trigger
//   - run:      list, show, steps
//   - schedule: list, create, delete
//   - quota:    show
//
// Каждая группа создаётся через фабричную функцию (NewPipelineCmd
// и т.д.), принимающую clientFn и outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
package cli

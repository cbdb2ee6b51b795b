// Package scheduler реализует периодические полные индексации.
//
// Scheduler периодически проверяет sync_schedules с истекшим
// next_due_at и диспатчит полную индексацию pipeline (trigger=system).
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Tick, processSchedule)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Schedules:  stores.Schedules,
//	    Pipelines:  stores.Pipelines,
//	    Dispatcher: dispatcher,
//	    Logger:     logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Leader Election:
//
// Scheduler не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package scheduler

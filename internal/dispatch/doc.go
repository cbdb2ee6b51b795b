// Package dispatch реализует приём запусков pipeline: проверку квот,
// создание run'ов с шагами и публикацию индексирующей работы.
//
// Два пути входа:
//   - DispatchFullPipeline — ручной или системный запуск полной
//     индексации; отказ по квотам возвращается вызывающему.
//   - DispatchChangeEvent — входящее событие изменения из интеграции;
//     отказ по квотам тихо пропускает событие (webhook не должен
//     получать ошибку из-за исчерпанного лимита).
//
// Порядок всегда один: сначала коммит строк run/step, затем публикация
// сообщений. Сообщение о несуществующем run невозможно; обратное
// (run без сообщения при падении публикации) разгребает внешняя
// реконсиляция.
package dispatch

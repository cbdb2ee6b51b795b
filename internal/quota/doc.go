// Package quota — контроль допуска новой индексирующей работы.
//
// Политика stateless: оценивается снимок счётчиков аккаунта на момент
// вызова. Между проверкой и фактической индексацией счётчики могут
// измениться — проверка сознательно грубая (admission control,
// не резервирование ресурсов).
package quota

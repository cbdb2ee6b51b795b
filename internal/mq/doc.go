// Package mq — публикация индексирующей работы в RabbitMQ.
//
// Ядро диспетчеризации только публикует: потребляет очередь внешний
// индексирующий worker. Пакет отвечает за:
//   - Соединение с автоматическим reconnect
//   - Декларацию топологии (exchange, delay-очередь, DLQ)
//   - Батчевую публикацию с publisher confirms
//
// Сообщения проходят через delay-очередь с фиксированным TTL: потребитель
// не должен успеть взять сообщение раньше, чем закоммитится транзакция,
// создавшая строки run/step (cross-service read-after-write гонка).
package mq

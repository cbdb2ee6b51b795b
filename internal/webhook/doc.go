// Package webhook — приём событий изменения из внешних интеграций.
//
// Три заботы:
//   - verifier.go — проверка HMAC-подписи сырого тела запроса
//   - linear.go   — разбор payload Linear в каноническое событие
//   - router.go   — разворачивание события по всем аккаунтам,
//     подключённым к приславшему workspace
//
// Провайдер присылает один webhook на workspace; сколько аккаунтов
// на него подписано — его не касается. Ошибка диспетчеризации одного
// аккаунта не мешает остальным.
package webhook

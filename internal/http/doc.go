// Package http exposes the club scheduler over JSON.
//
// Members act through paths carrying their own id:
//   - POST /members, GET /members/{memberID}: member registry.
//   - GET|POST /members/{memberID}/bookings: list or book personal sessions.
//     Body for POST: {"trainer_id","start","end"} with times as "HH:MM". The
//     value "0" for either time aborts the request.
//   - PUT|DELETE /members/{memberID}/bookings/{sessionID}: reschedule
//     ({"start","end"}) or cancel a personal session the member holds.
//   - GET /members/{memberID}/sessions: every active session the member holds.
//   - POST /members/{memberID}/classes/{sessionID}: join a group class.
//
// Administration and trainer views:
//   - GET|POST /classes: list group classes with enrolment, or create one
//     ({"trainer_id","room_id","capacity","start","end"}).
//   - GET|POST /trainers, PUT /trainers/{trainerID}/availability.
//   - GET /trainers/{trainerID}/sessions?kind=personal|group and
//     GET /trainers/{trainerID}/members.
//   - GET|POST /rooms.
//   - GET /healthz pings the store.
//
// Failures carry {"error_code","message","errors"} where error_code is the
// label produced by application.ErrorKind.
package http

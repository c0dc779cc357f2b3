// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - POST /bookings/repeat: generates occurrences of a recurring booking from a
//     seed booking. Body: {"initialBooking","repeatType","endDate","userId"}.
//     Responds 200 {"message","count"} on success, 400 {"error"} when the body
//     cannot be decoded or a required parameter is missing, and 500 {"error"}
//     when generation fails. OPTIONS preflight requests are answered by the CORS
//     middleware with a 200 and an empty body.
//   - GET /bookings, POST /bookings, GET /bookings/{id}, DELETE /bookings/{id}:
//     booking management endpoints exchanging the `bookingDTO` payload defined in
//     booking_handler.go. Listing accepts room_id, user_id, from and to query
//     parameters and includes overlap warnings. Deleting a seed booking also
//     removes the occurrences generated from it.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id},
//     DELETE /rooms/{id}: room catalog endpoints exchanging the `roomDTO` payload
//     defined in room_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

package types

// Client -> Server (JSON over the websocket; seq correlates the ack)
//
// create_room:
//   maxQuestions: number
//   topic: string (optional, defaults to "General knowledge")
//   difficulty: string (optional, defaults to "Easy")
//   files: [{name, url}] (optional, at most 3 PDFs from /upload)
//
// join_room:
//   roomCode: string
//   username: string (optional, defaults to "Player-<id prefix>")
//
// quit_room:
//   roomCode: string
//
// get_players:
//   roomCode: string
//
// player_ready (fire-and-forget, no ack):
//   roomCode: string
//   isReady: boolean
//
// start_game:
//   roomCode: string
//
// answer:
//   roomCode: string
//   answer: 0..3

// Server -> Client
//
// ack:
//   seq: number
//   success: boolean
//   message: string (on failure)
//   roomCode: string (create_room)
//   players: Player[] (get_players)
//   correct: boolean, currentScore: number (answer)
//
// Every other message is a room broadcast: {type, data}, see snapshot.go.

package types

// Room broadcasts (sent to every member, in mutation order):
//
// player_joined:        { players: Player[], allReady: boolean }
// player_left:          { playerId, username, players, allReady }
// player_ready_updated: { playerId, isReady, players, allReady }
// host_changed:         { newHostId, players }
// starting_game:        { count: 3..0, start: boolean (true on 0) }
// new_question:         { question: {question, options[4], index (1-based), total},
//                         scores: Rank[] (absent on the first question) }
// player_answered:      { playerId, username, isCorrect } // never the chosen option
// game_over:            { message, scores: Rank[], answerHistory: AnswerRecord[] }
//
// Player: { id, username, isReady, score }
// Rank:   { playerId, username, score } sorted by score desc, ties in join order

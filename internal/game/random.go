package game

import (
	cryptorand "crypto/rand"
	"math/rand"

	"word-imposter/internal/db"
)

// Room codes avoid 0/O and 1/I so they survive being read out loud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 5

func newRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := cryptorand.Read(buf); err != nil {
		return "AAAAA"
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

// shuffledParticipants returns a uniformly random permutation without
// mutating the input ordering.
func shuffledParticipants(participants []db.Participant) []db.Participant {
	order := make([]db.Participant, len(participants))
	copy(order, participants)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func randomParticipant(participants []db.Participant) db.Participant {
	return participants[rand.Intn(len(participants))]
}

// pickTarget draws a uniformly random participant other than the asker.
func pickTarget(participants []db.Participant, asker db.Participant) db.Participant {
	others := make([]db.Participant, 0, len(participants))
	for _, p := range participants {
		if p.ID != asker.ID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return asker
	}
	return others[rand.Intn(len(others))]
}

func randomWordID(wordIDs []uint) uint {
	return wordIDs[rand.Intn(len(wordIDs))]
}

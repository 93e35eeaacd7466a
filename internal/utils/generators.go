package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func generateID(prefix string) string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("%s_%d_%06d", prefix, timestamp, randomNum.Int64())
}

func GenerateUserID() string    { return generateID("usr") }
func GenerateTicketID() string  { return generateID("tkt") }
func GenerateBookingID() string { return generateID("bkg") }
func GeneratePaymentID() string { return generateID("pay") }

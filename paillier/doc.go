// Package paillier implements the Paillier additively-homomorphic
// public-key cryptosystem: key generation, encryption, CRT-accelerated
// decryption, opening, re-randomization, and the two homomorphic
// operations (ciphertext+ciphertext, ciphertext×plaintext).
package paillier

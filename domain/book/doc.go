// Package book implements the in-memory resting-order state of a
// two-sided limit order book with price-time priority. It maintains
// one red-black price ladder per side, a FIFO queue of orders inside
// each level, and an id index for O(1) cancel and amend.
//
// The package deliberately does not match orders: inserting a bid
// above the best ask leaves both resting. It is the book-keeping
// substrate a matching engine sits on top of.
package book

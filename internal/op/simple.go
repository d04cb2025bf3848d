package op

import (
	"math"

	"github.com/vk/kord/internal/coord"
)

// The no-operation. Does nothing, and is good at it.

func noopFn(op *Op, prv Provider, operands coord.Set) int {
	return operands.Len()
}

func newNoop(raw *RawParameters, prv Provider) (*Op, error) {
	return Plain(raw, noopFn, noopFn, nil, prv)
}

// addone: the hello-world of operators. Adds one to the first coordinate
// element, subtracts one on inverse application.

var addoneGamut = []Param{
	{Key: "inv", Kind: Flag},
}

func addoneFwd(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		c[0]++
		operands.Set(i, c)
	}
	return n
}

func addoneInv(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		c[0]--
		operands.Set(i, c)
	}
	return n
}

func newAddone(raw *RawParameters, prv Provider) (*Op, error) {
	return Plain(raw, addoneFwd, addoneInv, addoneGamut, prv)
}

// cart: conversion between geographic and cartesian coordinates, using the
// ellipsoid given by the ellps parameter.

var cartGamut = []Param{
	{Key: "inv", Kind: Flag},
	{Key: "ellps", Kind: Text, Default: Def("GRS80")},
}

func cartFwd(op *Op, prv Provider, operands coord.Set) int {
	e := op.Params.Ellps[0]
	n := 0
	for i := 0; i < operands.Len(); i++ {
		c := e.Cartesian(operands.Get(i))
		operands.Set(i, c)
		if !hasNan(c) {
			n++
		}
	}
	return n
}

func cartInv(op *Op, prv Provider, operands coord.Set) int {
	e := op.Params.Ellps[0]
	n := 0
	for i := 0; i < operands.Len(); i++ {
		c := e.Geographic(operands.Get(i))
		operands.Set(i, c)
		if !hasNan(c) {
			n++
		}
	}
	return n
}

func hasNan(c coord.Coor4D) bool {
	for _, v := range c {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func newCart(raw *RawParameters, prv Provider) (*Op, error) {
	return Plain(raw, cartFwd, cartInv, cartGamut, prv)
}

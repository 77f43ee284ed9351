package catalogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

func TestFileProvider_Catalog(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	snap, err := p.Catalog(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Packages, 1)
	pkg := snap.Packages["pkg-room"]
	require.Equal(t, model.QualityStandard, pkg.QualityLevel)

	// Parameter defaults are coerced at load time.
	quality := snap.Params["qualitaetsstufe"]
	require.True(t, quality.Global)
	require.Equal(t, "Standard", quality.Default.Str)
	room := snap.Params["raumgroesse"]
	require.False(t, room.Global)
	require.Equal(t, 15.0, room.Default.Num)

	// Package parameter links.
	defs := snap.LocalParamsFor("pkg-room")
	require.Len(t, defs, 1)
	require.Equal(t, "raumgroesse", defs[0].Key)

	require.Len(t, snap.Rules, 3)
}

func TestFileProvider_FormulasNormalized(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	snap, err := p.Catalog(context.Background())
	require.NoError(t, err)

	var socketRule, cableRule model.ItemRule
	for _, r := range snap.Rules {
		switch r.GroupID {
		case "GRP-SOCKET-1":
			socketRule = r
		case "GRP-CABLE":
			cableRule = r
		}
	}

	require.Len(t, socketRule.Material, 1)
	term, ok := socketRule.Material[0].(model.ProductTermEntry)
	require.True(t, ok)
	require.Equal(t, []string{"raumgroesse"}, term.Params)
	require.Equal(t, 0.3, term.Coeff)

	// Hours carry both the surcharge term and the floor clamp.
	require.Len(t, socketRule.Hours, 2)

	require.Len(t, cableRule.Material, 1)
	ref, ok := cableRule.Material[0].(model.GroupRefEntry)
	require.True(t, ok)
	require.Equal(t, "GRP-SOCKET-1", ref.GroupID)
	require.Equal(t, 0.5, ref.Factor)

	require.NotNil(t, cableRule.Selector)
	require.Len(t, cableRule.Selector.Buckets, 2)
	require.NotNil(t, cableRule.Selector.Buckets[0].Max)
	require.Equal(t, 5.0, *cableRule.Selector.Buckets[0].Max)
	require.Nil(t, cableRule.Selector.Buckets[1].Max)
}

func TestFileProvider_Products(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	snap, err := p.Catalog(context.Background())
	require.NoError(t, err)

	sock, ok := snap.Product("SOCK-STD", "nord")
	require.True(t, ok)
	require.Equal(t, 0.25, sock.HoursPerUnit.Geselle)

	// SW-STD is restricted to nord.
	_, ok = snap.Product("SW-STD", "sued")
	require.False(t, ok)
	_, ok = snap.Product("SW-STD", "nord")
	require.True(t, ok)
}

func TestFileProvider_Rates(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	rates, err := p.Rates(context.Background(), "nord")
	require.NoError(t, err)
	require.Equal(t, 15.0, rates.MarkupPercent)
	require.Equal(t, 60.0, rates.Wages[model.RoleGeselle])

	// Unknown locations yield empty wages, not an error.
	rates, err = p.Rates(context.Background(), "west")
	require.NoError(t, err)
	require.Empty(t, rates.Wages)
}

func TestFileProvider_Prices(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	book, err := p.Prices(context.Background())
	require.NoError(t, err)

	sock := book["SOCK-STD"]
	require.True(t, sock.HasBase)
	require.Equal(t, 10.0, sock.Base)
	require.Equal(t, 1.2, sock.Factors["nord"])

	// A priced row without a base keeps the missing-price marker.
	cable := book["CABLE-SHORT"]
	require.False(t, cable.HasBase)
}

func TestFileProvider_Locations(t *testing.T) {
	p := NewFileProvider("testdata/catalog.yaml")
	locs, err := p.Locations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"nord", "sued"}, locs)
}

func TestFileProvider_Errors(t *testing.T) {
	_, err := NewFileProvider("testdata/missing.yaml").Catalog(context.Background())
	require.Error(t, err)

	_, err = NewFileProvider("testdata/catalog.toml").Catalog(context.Background())
	require.Error(t, err)
}

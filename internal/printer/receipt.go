// Package printer renders a single order as a self-contained printable
// HTML document. It is a one-way projection: nothing flows back into the
// order state.
package printer

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"order-board-service/internal/model"
)

type Renderer struct {
	restaurantName string
	tmpl           *template.Template
}

func NewRenderer(restaurantName string) (*Renderer, error) {
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"money": func(m model.Money) string { return "R$ " + m.Display() },
		"when": func(t time.Time) string {
			return t.Local().Format("02/01/2006 15:04")
		},
	}).Parse(receiptHTML)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Renderer{restaurantName: restaurantName, tmpl: tmpl}, nil
}

type receiptData struct {
	Restaurant     string
	Order          *model.Order
	PayWith        model.Money
	ChangeDue      model.Money
	HasChange      bool
	HasDeliveryFee bool
}

// Render writes the printable document for one order.
func (r *Renderer) Render(w io.Writer, o *model.Order) error {
	data := receiptData{
		Restaurant:     r.restaurantName,
		Order:          o,
		HasDeliveryFee: o.DeliveryFee.Decimal.IsPositive(),
	}
	if due, ok := o.ChangeDue(); ok {
		data.PayWith = *o.ChangeFor
		data.ChangeDue = due
		data.HasChange = true
	}
	return r.tmpl.Execute(w, data)
}

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pedido #{{.Order.OrderNumber}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: Arial, sans-serif; padding: 20px; max-width: 400px; margin: 0 auto; }
.header { text-align: center; margin-bottom: 30px; border-bottom: 2px solid #000; padding-bottom: 20px; }
.header h1 { font-size: 28px; margin-bottom: 10px; }
.pedido-numero { font-size: 24px; font-weight: bold; margin: 20px 0; }
.status { display: inline-block; padding: 8px 16px; border-radius: 20px; font-weight: bold; margin: 10px 0; border: 2px solid #333; }
.secao { margin: 25px 0; padding: 15px; border: 1px solid #ddd; border-radius: 8px; }
.secao h2 { font-size: 18px; margin-bottom: 15px; border-bottom: 1px solid #eee; padding-bottom: 8px; }
.info-linha { margin: 8px 0; display: flex; justify-content: space-between; }
.item { display: flex; justify-content: space-between; padding: 10px; border-bottom: 1px solid #eee; }
.item:last-child { border-bottom: none; }
.resumo { margin-top: 20px; padding: 15px; background-color: #f9f9f9; border-radius: 8px; }
.resumo-linha { display: flex; justify-content: space-between; margin: 8px 0; }
.resumo-total { font-size: 20px; font-weight: bold; margin-top: 15px; padding-top: 15px; border-top: 2px solid #333; }
.troco-destaque { font-weight: bold; padding: 10px; border: 1px solid #22c55e; border-radius: 5px; margin: 10px 0; }
.footer { margin-top: 40px; text-align: center; font-size: 12px; border-top: 1px solid #ddd; padding-top: 20px; }
@media print { body { padding: 0; } }
</style>
</head>
<body>
<div class="header">
	<h1>{{.Restaurant}}</h1>
	<div class="pedido-numero">Pedido #{{.Order.OrderNumber}}</div>
	<div class="status">{{.Order.Status.Label}}</div>
</div>

<div class="secao">
	<h2>Informações do Cliente</h2>
	<div class="info-linha"><strong>Nome:</strong> <span>{{.Order.CustomerName}}</span></div>
	<div class="info-linha"><strong>Telefone:</strong> <span>{{.Order.CustomerPhone}}</span></div>
	<div class="info-linha"><strong>Tipo:</strong> <span>{{.Order.DeliveryType.Label}}</span></div>
	{{if .Order.PaymentMethod}}<div class="info-linha"><strong>Pagamento:</strong> <span>{{.Order.PaymentMethod.Label}}</span></div>{{end}}
	{{if .Order.CustomerAddress}}<div class="info-linha"><strong>Endereço:</strong> <span>{{.Order.CustomerAddress}}</span></div>{{end}}
	<div class="info-linha"><strong>Data/Hora:</strong> <span>{{when .Order.CreatedAt}}</span></div>
</div>

{{if .HasChange}}
<div class="troco-destaque">
	<div class="info-linha"><strong>Cliente vai pagar com:</strong> <span>{{money .PayWith}}</span></div>
	<div class="info-linha"><strong>Troco a devolver:</strong> <span>{{money .ChangeDue}}</span></div>
</div>
{{end}}

<div class="secao">
	<h2>Itens do Pedido</h2>
	{{range .Order.Items}}
	<div class="item">
		<span>{{.Quantity}}x {{.ProductName}}</span>
		<span>{{money .LineSubtotal}}</span>
	</div>
	{{end}}
</div>

{{if .Order.Notes}}
<div class="secao">
	<h2>Observações</h2>
	<p>{{.Order.Notes}}</p>
</div>
{{end}}

<div class="resumo">
	<div class="resumo-linha"><span>Subtotal:</span> <span>{{money .Order.Subtotal}}</span></div>
	{{if .HasDeliveryFee}}<div class="resumo-linha"><span>Taxa de Entrega:</span> <span>{{money .Order.DeliveryFee}}</span></div>{{end}}
	<div class="resumo-linha resumo-total"><span>Total:</span> <span>{{money .Order.Total}}</span></div>
</div>

<div class="footer">
	<p>Obrigado pela preferência!</p>
	<p>{{.Restaurant}}</p>
</div>

<script>
window.onload = function() { window.print(); }
</script>
</body>
</html>
`

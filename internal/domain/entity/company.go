package entity

// Company is a client company whose policy flags gate the approval workflow.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// AllowPersonalPayments permits charging employees for quantity ordered
	// beyond entitlement instead of rejecting the cart.
	AllowPersonalPayments bool `json:"allow_personal_payments"`

	// EnablePRPOWorkflow gates the whole approval chain. When false, orders
	// skip manual approval and are created awaiting fulfilment.
	EnablePRPOWorkflow bool `json:"enable_pr_po_workflow"`

	// EnableSiteAdminPRApproval requires a site admin to supply PR number and
	// date to move an order out of awaiting approval.
	EnableSiteAdminPRApproval bool `json:"enable_site_admin_pr_approval"`

	// RequireCompanyAdminPOApproval requires a company admin to group
	// approved PRs into a PO before fulfilment proceeds.
	RequireCompanyAdminPOApproval bool `json:"require_company_admin_po_approval"`

	// AllowMultiPRPO permits grouping orders holding different PR numbers
	// under one PO.
	AllowMultiPRPO bool `json:"allow_multi_pr_po"`
}

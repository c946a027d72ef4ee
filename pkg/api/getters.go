package api

// Getters in the style of generated message code. They are nil-safe and let
// interceptors read routing fields without knowing the concrete message.

func (x *GetGroupRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *UpdateGroupRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *DeleteGroupRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *AddMemberRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *RemoveMemberRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *GetGroupBalancesRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *CreateExpenseRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *ListExpensesRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *ListDebtsRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *RecomputeDebtsRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *RecordPaymentRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *ListPaymentsRequest) GetGroupID() string {
	if x == nil {
		return ""
	}
	return x.GroupID
}

func (x *GetExpenseRequest) GetExpenseID() string {
	if x == nil {
		return ""
	}
	return x.ExpenseID
}

func (x *UpdateExpenseRequest) GetExpenseID() string {
	if x == nil {
		return ""
	}
	return x.ExpenseID
}

func (x *DeleteExpenseRequest) GetExpenseID() string {
	if x == nil {
		return ""
	}
	return x.ExpenseID
}

func (x *DeletePaymentRequest) GetPaymentID() string {
	if x == nil {
		return ""
	}
	return x.PaymentID
}
